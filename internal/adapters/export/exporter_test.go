package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"hazcat/internal/blob"
	"hazcat/pkg/domain"
)

func sampleReport() domain.Report {
	inf := domain.Quantity(math.Inf(1))
	return domain.Report{
		ID:       "rep-1",
		Facility: "hot cell",
		Results: []domain.NuclideResult{
			{
				Nuclide:     domain.Nuclide{Name: "Cs-137", HalfLifeSeconds: 9.5e8, AtomicWeight: 136.9},
				InventoryCi: 50,
				DCFs: domain.ResolvedDCFSet{Nuclide: "Cs-137", Values: map[domain.DCFKey]domain.ResolvedDCF{
					domain.DCFInhalationHC2: {Value: 4.6e-9, Available: true, Source: domain.SourceICRP119},
				}},
				HC2: domain.ThresholdHC2{Curies: 9.1e4, Grams: 1.05e3},
				HC3: domain.ThresholdHC3{
					Curies:   61,
					Grams:    0.7,
					Dominant: domain.ExposureFoodIngestion,
					Pathways: []domain.PathwayResult{
						{Pathway: domain.ExposureInhalation, Curies: 400, Grams: 4.6},
						{Pathway: domain.ExposureFoodIngestion, Curies: 61, Grams: 0.7},
						{Pathway: domain.ExposureSubmersion, Curies: inf, Grams: inf},
					},
				},
				Published:  &domain.PublishedThreshold{Nuclide: "Cs-137", HC2Curies: 9.4e4, HC3Curies: 60},
				Categories: domain.NuclideCategories{Lookup: domain.CategoryBelowHC3, Computed: domain.CategoryBelowHC3},
			},
			{Nuclide: domain.Nuclide{Name: "Xx-1"}, InventoryCi: 2, Err: "nuclide Xx-1 not found in any dataset"},
		},
	}
}

func readAll(t *testing.T, store blob.Store, key string) []byte {
	t.Helper()
	_, rc, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return b
}

func TestExportWritesAllFormats(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := New(store, "")
	keys, err := exp.Export(ctx, sampleReport())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := []string{"reports/rep-1/report.json", "reports/rep-1/results.csv", "reports/rep-1/pathways.csv"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected keys %v", keys)
	}

	var decoded domain.Report
	if err := json.Unmarshal(readAll(t, store, want[0]), &decoded); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	sub, _ := decoded.Results[0].HC3.Pathway(domain.ExposureSubmersion)
	if !sub.Curies.IsInf() {
		t.Fatalf("expected inf submersion to survive export, got %v", sub.Curies)
	}

	records, err := csv.NewReader(strings.NewReader(string(readAll(t, store, want[1])))).ReadAll()
	if err != nil {
		t.Fatalf("parse results csv: %v", err)
	}
	if len(records) != 3 || records[0][0] != "nuclide" {
		t.Fatalf("unexpected results csv %v", records)
	}
	cs := records[1]
	if cs[0] != "Cs-137" || cs[5] != "4.6e-09" || cs[6] != "" || cs[13] != "food_ingestion" || cs[17] != "below HC-3" {
		t.Fatalf("unexpected Cs-137 row %v", cs)
	}
	if failed := records[2]; failed[0] != "Xx-1" || !strings.Contains(failed[len(failed)-1], "not found") {
		t.Fatalf("unexpected failed row %v", failed)
	}

	pathways, err := csv.NewReader(strings.NewReader(string(readAll(t, store, want[2])))).ReadAll()
	if err != nil {
		t.Fatalf("parse pathways csv: %v", err)
	}
	if len(pathways) != 4 {
		t.Fatalf("expected header plus three pathways, got %v", pathways)
	}
	if pathways[2][1] != "food_ingestion" || pathways[2][4] != "true" || pathways[3][2] != "inf" {
		t.Fatalf("unexpected pathway rows %v", pathways)
	}
}

func TestExportReplacesExistingArtifacts(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := New(store, "archive/", FormatJSON)
	if _, err := exp.Export(ctx, sampleReport()); err != nil {
		t.Fatalf("first export: %v", err)
	}
	r := sampleReport()
	r.Facility = "renamed"
	keys, err := exp.Export(ctx, r)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if len(keys) != 1 || keys[0] != "archive/rep-1/report.json" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if !strings.Contains(string(readAll(t, store, keys[0])), "renamed") {
		t.Fatalf("artifact not replaced")
	}
}

func TestExportValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(blob.NewMemory(), "").Export(ctx, domain.Report{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := New(blob.NewMemory(), "", Format("xml")).Export(ctx, sampleReport()); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		math.Inf(1): "inf",
		math.NaN():  "",
		0.5:         "0.5",
		123456789:   "1.23457e+08",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
