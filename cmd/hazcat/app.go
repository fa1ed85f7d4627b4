package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"hazcat/internal/adapters/export"
	"hazcat/internal/blob"
	"hazcat/internal/config"
	"hazcat/internal/core"
	"hazcat/internal/refdata"
)

// globalFlags are the persistent root flags.
type globalFlags struct {
	configPath string
	logLevel   string
	storage    string
	trace      bool
	metrics    bool
	// export is set by run --export.
	export bool
}

// app holds everything a command needs. Backends are opened once per
// invocation and released by close; the catalog is loaded only by commands
// that evaluate.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    core.PersistentStore
	blob     blob.Store
	registry *prometheus.Registry
	expvar   *core.ExpvarMetricsRecorder
	svc      *core.Service
	stderr   io.Writer
	metrics  bool
	trace    bool
}

// resolveConfigPath falls back to ./hazcat.yaml when it exists.
func resolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(config.DefaultFile); err == nil {
		return config.DefaultFile
	}
	return ""
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(flags.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.storage != "" {
		cfg.Storage.Driver = core.StorageDriver(flags.storage)
	}
	if flags.export {
		cfg.Export.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// needsBlob reports whether the configuration reads or writes the blob store.
func needsBlob(cfg *config.Config) bool {
	return cfg.Refdata.Source == core.RefdataBlob || cfg.Export.Enabled
}

func newApp(ctx context.Context, flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   newLogger(cfg, stderr),
		registry: prometheus.NewRegistry(),
		stderr:   stderr,
		metrics:  flags.metrics,
		trace:    flags.trace,
	}
	a.store, err = core.OpenPersistentStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	a.logger.Debug("hazcat ready",
		"version", Version,
		"storage", string(cfg.Storage.Driver),
		"refdata", string(cfg.Refdata.Source))
	return a, nil
}

// service loads the reference catalog from the configured source and builds
// the engine on first use.
func (a *app) service(ctx context.Context) (*core.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	if needsBlob(a.cfg) {
		if _, err := a.blobStore(ctx); err != nil {
			return nil, err
		}
	}
	catalog, err := core.LoadCatalog(ctx, a.cfg.Refdata, core.RefdataDeps{Blob: a.blob, Store: a.store})
	if err != nil {
		return nil, fmt.Errorf("load reference data from %s: %w", a.cfg.Refdata.Source, err)
	}
	if missing := catalog.Missing(); len(missing) > 0 {
		a.logger.Warn("optional reference tables missing", "tables", fmt.Sprint(missing))
	}
	svc, err := a.newService(catalog)
	if err != nil {
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

func (a *app) newService(catalog *refdata.Catalog) (*core.Service, error) {
	logger := core.NewSlogLogger(a.logger)
	rec, err := a.metricsRecorder()
	if err != nil {
		return nil, err
	}
	tiers, err := a.cfg.Priority()
	if err != nil {
		return nil, err
	}
	opts := []core.Option{
		core.WithLogger(logger),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: logger}),
		core.WithMetricsRecorder(rec),
		core.WithParameters(a.cfg.Parameters),
		core.WithPriority(tiers),
		core.WithReportArchive(a.store),
		core.WithGammaLineE1(a.cfg.Engine.GammaLineE1),
	}
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(a.stderr)))
	}
	if a.cfg.Export.Enabled {
		formats, err := a.cfg.ExportFormats()
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithReportExporter(export.New(a.blob, a.cfg.Export.Prefix, formats...)))
	}
	return core.NewService(catalog, opts...)
}

// metricsRecorder builds the recorder named by metrics.backend.
func (a *app) metricsRecorder() (core.MetricsRecorder, error) {
	if a.cfg.Metrics.Backend == config.MetricsExpvar {
		a.expvar = core.NewExpvarMetricsRecorder("")
		return a.expvar, nil
	}
	return core.NewPrometheusMetricsRecorder(a.registry)
}

// blobStore opens the configured blob store on first use.
func (a *app) blobStore(ctx context.Context) (blob.Store, error) {
	if a.blob != nil {
		return a.blob, nil
	}
	bs, err := blob.OpenConfig(ctx, a.cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open %s blob store: %w", a.cfg.Blob.Driver, err)
	}
	a.blob = bs
	return bs, nil
}

// close releases the persistent store and, with --metrics, dumps the
// operation counters gathered during the invocation.
func (a *app) close() error {
	var errs []error
	if a.metrics {
		errs = append(errs, a.writeMetrics(a.stderr))
	}
	if c, ok := a.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (a *app) writeMetrics(w io.Writer) error {
	if a.expvar != nil {
		return writeExpvarMetrics(w, a.expvar.Snapshot())
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = h.GetSampleSum()
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writeExpvarMetrics prints a snapshot in the same line format as the
// Prometheus dump.
func writeExpvarMetrics(w io.Writer, snap core.ExpvarMetricsSnapshot) error {
	var lines []string
	for op, statuses := range snap.Results {
		for status, count := range statuses {
			lines = append(lines, fmt.Sprintf("hazcat_operations_total{operation=%s,status=%s} %d", op, status, count))
		}
	}
	for op, ms := range snap.DurationsMS {
		lines = append(lines, fmt.Sprintf("hazcat_operation_duration_ms_total{operation=%s} %g", op, ms))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
