package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hazcat/internal/core"
	"hazcat/pkg/domain"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// isolate points every backend at the test's temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HAZCAT_STORAGE_DRIVER", "sqlite")
	t.Setenv("HAZCAT_SQLITE_PATH", filepath.Join(dir, "hazcat.db"))
	t.Setenv("HAZCAT_REFDATA_DRIVER", "embedded")
	t.Setenv("HAZCAT_BLOB_DRIVER", "fs")
	t.Setenv("HAZCAT_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("HAZCAT_LOG_LEVEL", "info")
	return dir
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil || !strings.Contains(out, "hazcat version "+Version) {
		t.Fatalf("version: %q %v", out, err)
	}
}

func TestRunFromFlagsJSON(t *testing.T) {
	isolate(t)
	out, stderr, err := execute(t, "run", "--storage", "memory",
		"--nuclide", "Co-60=500", "--nuclide", "Cs-137=10", "--name", "waste vault", "-o", "json")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	var report domain.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Facility != "waste vault" || len(report.Results) != 2 || report.Classification == nil {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Classification.Lookup.Category != domain.CategoryHC3 {
		t.Fatalf("expected HC-3 by lookup, got %+v", report.Classification.Lookup)
	}
	if !strings.Contains(stderr, "facility classified") {
		t.Fatalf("expected classification log, got %q", stderr)
	}
}

func TestRunFromFileTable(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "facility.yaml")
	body := "name: hot cell\nentries:\n  - nuclide: Co-60\n    inventory_ci: 500\n  - nuclide: Kr-85\n    inventory_ci: 1000\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write inventory: %v", err)
	}
	out, _, err := execute(t, "run", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"hot cell", "NUCLIDE", "Co-60", "Kr-85", "Sum of ratios (DOE-STD-1027-2018 lookup)", "Sum of ratios (computed)", "Kr-85: warning"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	isolate(t)
	cases := []struct {
		name string
		args []string
	}{
		{"no nuclides", []string{"run"}},
		{"missing curies", []string{"run", "--nuclide", "Co-60"}},
		{"bad number", []string{"run", "--nuclide", "Co-60=lots"}},
		{"file and flags", []string{"run", "facility.yaml", "--nuclide", "Co-60=1"}},
		{"partial override", []string{"run", "--nuclide", "Co-60=1", "--nuclide", "Cs-137=1", "--rf-hc2", "0.5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrInvalidReleaseFractionOverride) {
				t.Fatalf("unexpected error type: %v", err)
			}
		})
	}
}

func TestRunUnknownNuclideFails(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "run", "--storage", "memory", "--nuclide", "Zz-999=1")
	if !errors.Is(err, domain.ErrNuclideNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(out, "Zz-999: error") {
		t.Fatalf("report should still be printed:\n%s", out)
	}
}

func TestReportsArchiveAcrossInvocations(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "run", "--nuclide", "Cs-137=10", "-o", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var report domain.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}

	out, _, err = execute(t, "reports", "-o", "json")
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	var summaries []domain.ReportSummary
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != report.ID || summaries[0].Nuclides != 1 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}

	out, _, err = execute(t, "reports", "show", report.ID)
	if err != nil || !strings.Contains(out, "Cs-137") {
		t.Fatalf("show: %v\n%s", err, out)
	}
	var notFound domain.ErrNotFound
	if _, _, err := execute(t, "reports", "show", "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportWritesArtifacts(t *testing.T) {
	dir := isolate(t)
	out, _, err := execute(t, "run", "--storage", "memory", "--export", "--nuclide", "Co-60=1", "-o", "json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var report domain.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"report.json", "results.csv", "pathways.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "blobs", "reports", report.ID, name)); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
	}
}

func TestRefdataImportAndPublish(t *testing.T) {
	dir := isolate(t)
	out, _, err := execute(t, "refdata", "import")
	if err != nil || !strings.Contains(out, "nuclide_master") {
		t.Fatalf("import: %v\n%s", err, out)
	}

	t.Setenv("HAZCAT_REFDATA_DRIVER", string(core.RefdataStore))
	out, _, err = execute(t, "nuclide", "Co-60", "-o", "json")
	if err != nil {
		t.Fatalf("nuclide from store: %v", err)
	}
	var nuclides []domain.Nuclide
	if err := json.Unmarshal([]byte(out), &nuclides); err != nil || len(nuclides) != 1 || nuclides[0].AtomicWeight <= 0 {
		t.Fatalf("unexpected nuclides %s %v", out, err)
	}
	if _, _, err := execute(t, "refdata", "import", "--from", "store"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected self-import rejection, got %v", err)
	}

	out, _, err = execute(t, "refdata", "publish")
	if err != nil || !strings.Contains(out, "refdata/nuclide_master.csv") {
		t.Fatalf("publish: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "blobs", "refdata", "nuclide_master.csv")); err != nil {
		t.Fatalf("published object: %v", err)
	}
	t.Setenv("HAZCAT_REFDATA_DRIVER", string(core.RefdataBlob))
	out, _, err = execute(t, "refdata", "tables")
	if err != nil || !strings.Contains(out, "nuclide_master") {
		t.Fatalf("tables from blob: %v\n%s", err, out)
	}
}

func TestNuclideAndDose(t *testing.T) {
	isolate(t)
	out, _, err := execute(t, "--storage", "memory", "nuclide", "Co-60")
	if err != nil || !strings.Contains(out, "Co-60") || !strings.Contains(out, "HALF_LIFE_S") {
		t.Fatalf("nuclide: %v\n%s", err, out)
	}
	out, _, err = execute(t, "--storage", "memory", "nuclide", "--list")
	if err != nil || !strings.Contains(out, "Cs-137") {
		t.Fatalf("list: %v", err)
	}
	if _, _, err := execute(t, "--storage", "memory", "nuclide"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	out, _, err = execute(t, "--storage", "memory", "dose", "Co-60", "--activity", "10", "--distance", "10,100", "--fraction", "1", "-o", "json")
	if err != nil {
		t.Fatalf("dose: %v", err)
	}
	var res core.PointSourceResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode dose: %v", err)
	}
	if len(res.Points) != 2 || res.Points[0].Rate <= res.Points[1].Rate {
		t.Fatalf("expected rate to fall with distance: %+v", res.Points)
	}
}

func TestConfigShowAndInit(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HAZCAT_BLOB_S3_SECRET_ACCESS_KEY", "hunter2")
	out, _, err := execute(t, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "chi_over_q_hc3") || strings.Contains(out, "hunter2") {
		t.Fatalf("unexpected config output:\n%s", out)
	}
	path := filepath.Join(dir, "conf", "hazcat.yaml")
	if _, _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, _, err := execute(t, "--config", path, "--log-level", "loud", "version"); err != nil {
		t.Fatalf("version must not load config: %v", err)
	}
	if _, _, err := execute(t, "--config", path, "--log-level", "loud", "config", "show"); err == nil {
		t.Fatalf("expected invalid log level")
	}
}

func TestTraceAndMetricsFlags(t *testing.T) {
	isolate(t)
	_, stderr, err := execute(t, "--storage", "memory", "--trace", "--metrics", "nuclide", "Co-60")
	if err != nil {
		t.Fatalf("nuclide: %v", err)
	}
	if !strings.Contains(stderr, `"operation":"resolve_nuclide"`) {
		t.Fatalf("expected trace span, got %q", stderr)
	}
	if !strings.Contains(stderr, "hazcat_operations_total{operation=resolve_nuclide,status=success} 1") {
		t.Fatalf("expected metrics dump, got %q", stderr)
	}
}

func TestMetricsBackends(t *testing.T) {
	cases := []struct {
		backend string
		want    string
	}{
		{"prometheus", "hazcat_operations_total{operation=resolve_nuclide,status=success} 1"},
		{"expvar", "hazcat_operation_duration_ms_total{operation=resolve_nuclide}"},
	}
	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			isolate(t)
			t.Setenv("HAZCAT_METRICS_BACKEND", tc.backend)
			_, stderr, err := execute(t, "--storage", "memory", "--metrics", "nuclide", "Co-60")
			if err != nil {
				t.Fatalf("nuclide: %v", err)
			}
			if !strings.Contains(stderr, "hazcat_operations_total{operation=resolve_nuclide,status=success} 1") {
				t.Fatalf("expected success counter, got %q", stderr)
			}
			if !strings.Contains(stderr, tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, stderr)
			}
		})
	}
	isolate(t)
	t.Setenv("HAZCAT_METRICS_BACKEND", "statsd")
	if _, _, err := execute(t, "--storage", "memory", "nuclide", "Co-60"); err == nil || !strings.Contains(err.Error(), "metrics.backend") {
		t.Fatalf("expected metrics.backend error, got %v", err)
	}
}

func TestMainExitCodes(t *testing.T) {
	var codes []int
	old := exitFunc
	exitFunc = func(code int) { codes = append(codes, code) }
	defer func() { exitFunc = old }()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"hazcat", "version"}
	main()
	os.Args = []string{"hazcat", "no-such-command"}
	main()
	if len(codes) != 2 || codes[0] != 0 || codes[1] != 1 {
		t.Fatalf("unexpected exit codes %v", codes)
	}
}
