package core

import (
	"time"

	"github.com/google/uuid"

	"hazcat/internal/dcf"
	"hazcat/internal/threshold"
	"hazcat/pkg/domain"
)

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	clock      Clock
	logger     Logger
	audit      AuditRecorder
	metrics    MetricsRecorder
	tracer     Tracer
	params     threshold.Parameters
	priority   []dcf.Tier
	archive    domain.ReportArchive
	exporter   ReportExporter
	newID      func() string
	gammaLines bool
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:    ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:   noopLogger{},
		audit:    noopAuditRecorder{},
		metrics:  noopMetricsRecorder{},
		tracer:   noopTracer{},
		params:   threshold.DefaultParameters(),
		priority: dcf.DefaultPriority,
		newID:    uuid.NewString,
	}
}

// WithClock overrides the time source used for report timestamps and
// operation durations.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder sets the audit sink.
func WithAuditRecorder(rec AuditRecorder) Option {
	return func(o *serviceOptions) {
		if rec != nil {
			o.audit = rec
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithParameters replaces the physical constants and dispersion factors.
func WithParameters(p threshold.Parameters) Option {
	return func(o *serviceOptions) { o.params = p }
}

// WithPriority replaces the DCF source tiers.
func WithPriority(tiers []dcf.Tier) Option {
	return func(o *serviceOptions) {
		if len(tiers) > 0 {
			o.priority = tiers
		}
	}
}

// WithReportArchive saves every completed report to archive.
func WithReportArchive(archive domain.ReportArchive) Option {
	return func(o *serviceOptions) { o.archive = archive }
}

// WithReportExporter writes every completed report through exporter.
func WithReportExporter(exporter ReportExporter) Option {
	return func(o *serviceOptions) { o.exporter = exporter }
}

// WithIDGenerator overrides report ID generation (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(o *serviceOptions) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithGammaLineE1 derives E1 from the gamma-line table for nuclides whose
// master row carries no photon energy.
func WithGammaLineE1(enabled bool) Option {
	return func(o *serviceOptions) { o.gammaLines = enabled }
}
