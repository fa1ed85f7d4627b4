package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopLogger(_ *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "key", "value")
	logger.Info("info", "key", "value")
	logger.Warn("warn", "key", "value")
	logger.Error("error", "key", "value")
}

func TestSlogLoggerWritesStructuredRecords(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.Warn("dose conversion factor unavailable", "nuclide", "Kr-85")
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "nuclide=Kr-85") {
		t.Fatalf("unexpected slog output %q", out)
	}
	if NewSlogLogger(nil) == nil {
		t.Fatalf("expected default slog logger")
	}
}

func TestLogAuditRecorder(t *testing.T) {
	log := &captureLogger{}
	rec := LogAuditRecorder{Logger: log}
	rec.Record(context.Background(), AuditEntry{Operation: OpRunFacility, Status: AuditStatusSuccess})
	rec.Record(context.Background(), AuditEntry{Operation: OpRunFacility, Status: AuditStatusError, Error: "boom"})
	if len(log.calls) != 2 || log.calls[0] != "i:audit" || log.calls[1] != "w:audit" {
		t.Fatalf("unexpected audit log calls %v", log.calls)
	}
	LogAuditRecorder{}.Record(context.Background(), AuditEntry{})
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "hazcat_service_metrics_") {
		t.Fatalf("unexpected generated name %s", rec.Name())
	}
	ctx := context.Background()
	rec.Observe(ctx, OpRunFacility, true, 2*time.Millisecond)
	rec.Observe(ctx, OpRunFacility, false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS[OpRunFacility] != 5 {
		t.Fatalf("expected 5ms total, got %v", snap.DurationsMS)
	}
	if snap.Results[OpRunFacility]["success"] != 1 || snap.Results[OpRunFacility]["error"] != 1 {
		t.Fatalf("unexpected counters %v", snap.Results)
	}
	published := expvar.Get(rec.Name())
	if published == nil || !strings.Contains(published.String(), OpRunFacility) {
		t.Fatalf("expected expvar export, got %v", published)
	}
}

func TestJSONTracer(t *testing.T) {
	buf := &bytes.Buffer{}
	tracer := NewJSONTracer(buf)
	_, span := tracer.Start(context.Background(), OpResolveNuclide)
	span.End(nil)
	_, span = tracer.Start(context.Background(), OpResolveNuclide)
	span.End(errors.New("nuclide Zz-1 not found"))

	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error == "" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two JSON lines, got %q", buf.String())
	}
	var decoded JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil || decoded.Operation != OpResolveNuclide {
		t.Fatalf("decode line: %+v %v", decoded, err)
	}

	silent := NewJSONTracer(nil)
	_, span = silent.Start(context.Background(), "op")
	span.End(nil)
	if len(silent.Entries()) != 1 {
		t.Fatalf("expected retained span without writer")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, OpRunFacility, true, 10*time.Millisecond)
	rec.Observe(ctx, OpRunFacility, true, 20*time.Millisecond)
	rec.Observe(ctx, OpRunFacility, false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var successes float64
	var samples uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "hazcat_operations_total":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "status" && lp.GetValue() == "success" {
						successes += m.GetCounter().GetValue()
					}
				}
			}
		case "hazcat_operation_duration_seconds":
			for _, m := range mf.GetMetric() {
				samples += m.GetHistogram().GetSampleCount()
			}
		}
	}
	if successes != 2 || samples != 3 {
		t.Fatalf("unexpected prometheus values: successes=%v samples=%v", successes, samples)
	}

	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
