// Package core wires the reference catalog, the resolvers and the threshold
// calculator into the HAZCAT service, and carries the service's logging,
// audit, metrics and tracing hooks.
package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"hazcat/internal/dcf"
	"hazcat/internal/facility"
	"hazcat/internal/nuclide"
	"hazcat/internal/pointsource"
	"hazcat/internal/refdata"
	"hazcat/internal/threshold"
	"hazcat/pkg/domain"
)

// Operation names reported to audit, metrics and tracing.
const (
	OpRunFacility     = "run_facility"
	OpResolveNuclide  = "resolve_nuclide"
	OpPointSourceDose = "point_source_dose"
	OpGetReport       = "get_report"
	OpListReports     = "list_reports"
)

// ErrNoArchive is returned by report queries on a service without an archive.
var ErrNoArchive = errors.New("no report archive configured")

// ReportExporter writes a finished report somewhere durable and returns the
// locations written.
type ReportExporter interface {
	Export(ctx context.Context, report domain.Report) ([]string, error)
}

// Service computes threshold quantities and facility categories.
type Service struct {
	catalog   *refdata.Catalog
	nuclides  *nuclide.Resolver
	dcfs      *dcf.Resolver
	calc      *threshold.Calculator
	releases  *threshold.ReleaseTable
	published *facility.Published

	clock      Clock
	logger     Logger
	audit      AuditRecorder
	metrics    MetricsRecorder
	tracer     Tracer
	archive    domain.ReportArchive
	exporter   ReportExporter
	newID      func() string
	gammaLines bool
}

// NewService builds a service over catalog.
func NewService(catalog *refdata.Catalog, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: reference catalog required", domain.ErrInvalidInput)
	}
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	calc, err := threshold.New(o.params)
	if err != nil {
		return nil, err
	}
	return &Service{
		catalog:    catalog,
		nuclides:   nuclide.NewResolver(catalog),
		dcfs:       dcf.NewResolver(catalog, dcf.WithPriority(o.priority)),
		calc:       calc,
		releases:   threshold.NewReleaseTable(catalog),
		published:  facility.NewPublished(catalog),
		clock:      o.clock,
		logger:     o.logger,
		audit:      o.audit,
		metrics:    o.metrics,
		tracer:     o.tracer,
		archive:    o.archive,
		exporter:   o.exporter,
		newID:      o.newID,
		gammaLines: o.gammaLines,
	}, nil
}

// Catalog returns the reference catalog in use.
func (s *Service) Catalog() *refdata.Catalog { return s.catalog }

// Parameters returns the calculator constants in use.
func (s *Service) Parameters() threshold.Parameters { return s.calc.Parameters() }

// run wraps an operation with tracing, metrics, audit and logging. fn returns
// the ID of the entity it acted on.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (string, error)) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	entityID, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	entry := AuditEntry{
		Operation: op,
		Status:    AuditStatusSuccess,
		EntityID:  entityID,
		Duration:  duration,
		Timestamp: start,
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", op, "entity_id", entityID, "duration", duration)
	}
	s.audit.Record(ctx, entry)
	return err
}

// Run evaluates every nuclide of in and classifies the facility. Nuclides
// that cannot be computed are reported with their error and do not stop the
// others; their errors are joined into the returned error alongside the
// complete report. Invalid input returns an empty report.
func (s *Service) Run(ctx context.Context, in domain.FacilityInput) (domain.Report, error) {
	var report domain.Report
	err := s.run(ctx, OpRunFacility, func(ctx context.Context) (string, error) {
		if err := in.Validate(); err != nil {
			return "", err
		}
		report = domain.Report{
			ID:        s.newID(),
			Facility:  in.Name,
			CreatedAt: s.clock.Now().UTC(),
			Results:   make([]domain.NuclideResult, 0, len(in.Entries)),
		}
		var errs []error
		for _, entry := range in.Entries {
			res, err := s.Evaluate(entry)
			if err != nil {
				errs = append(errs, err)
			}
			report.Results = append(report.Results, res)
		}
		classification := facility.Classify(report.Results)
		report.Classification = &classification
		s.logger.Info("facility classified",
			"report_id", report.ID,
			"nuclides", len(report.Results),
			"lookup", string(classification.Lookup.Category),
			"computed", string(classification.Computed.Category),
		)
		if err := s.persist(ctx, report); err != nil {
			errs = append(errs, err)
		}
		return report.ID, errors.Join(errs...)
	})
	return report, err
}

func (s *Service) persist(ctx context.Context, report domain.Report) error {
	var errs []error
	if s.archive != nil {
		if err := s.archive.SaveReport(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("archive report: %w", err))
		}
	}
	if s.exporter != nil {
		keys, err := s.exporter.Export(ctx, report)
		if err != nil {
			errs = append(errs, fmt.Errorf("export report: %w", err))
		} else {
			s.logger.Info("report exported", "report_id", report.ID, "artifacts", strings.Join(keys, ","))
		}
	}
	return errors.Join(errs...)
}

// Evaluate computes one inventory entry. On failure the returned result
// carries only the nuclide name, the inventory and the error text.
func (s *Service) Evaluate(entry domain.FacilityInventoryEntry) (domain.NuclideResult, error) {
	name := strings.TrimSpace(entry.Nuclide)
	res := domain.NuclideResult{Nuclide: domain.Nuclide{Name: name}, InventoryCi: entry.InventoryCi}
	n, err := s.resolve(name)
	if err != nil {
		res.Err = err.Error()
		s.logger.Warn("nuclide not computed", "nuclide", name, "error", err)
		return res, err
	}
	if n.PhotonEnergy == 0 {
		res.Warnings = append(res.Warnings, "no photon energy (E1); direct exposure not evaluated")
	}
	res.Nuclide = n

	res.DCFs = s.dcfs.Resolve(n)
	for _, key := range res.DCFs.Missing() {
		w := &domain.MissingDCFError{Nuclide: name, Key: key}
		res.Warnings = append(res.Warnings, w.Error())
		s.logger.Warn("dose conversion factor unavailable", "nuclide", name, "dcf", string(key))
	}

	fr := s.releases.Fractions(name, entry.ReleaseFractionHC2, entry.ReleaseFractionHC3)
	if math.IsNaN(fr.HC3) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("no HC-3 release fraction for element %s", n.Element()))
	}
	if !math.IsNaN(fr.Bv) {
		bv := fr.Bv
		res.Bv = &bv
	}

	in := threshold.Input{Nuclide: n, DCFs: res.DCFs, Fractions: fr}
	res.HC2 = s.calc.HC2(in)
	res.HC3 = s.calc.HC3(in)
	for _, pw := range res.HC3.Pathways {
		if pw.Curies.IsInf() {
			s.logger.Debug("pathway unbounded", "nuclide", name, "pathway", string(pw.Pathway))
		}
	}

	if pub, ok := s.published.Lookup(name); ok {
		res.Published = &pub
	}
	res.Categories = facility.Categories(res)
	res.Notes = facility.Notes(res)
	return res, nil
}

// resolve looks up the nuclide and, when enabled, fills a missing E1 from
// the gamma-line table.
func (s *Service) resolve(name string) (domain.Nuclide, error) {
	n, err := s.nuclides.Resolve(name)
	if err != nil {
		return domain.Nuclide{}, err
	}
	if s.gammaLines && n.PhotonEnergy == 0 {
		if e1 := pointsource.Lines(s.catalog, name).E1(); e1 > 0 {
			n.PhotonEnergy = e1
		}
	}
	return n, nil
}

// ResolveNuclide returns the physical parameters of one nuclide.
func (s *Service) ResolveNuclide(ctx context.Context, name string) (domain.Nuclide, error) {
	var n domain.Nuclide
	err := s.run(ctx, OpResolveNuclide, func(context.Context) (string, error) {
		var err error
		n, err = s.resolve(name)
		return name, err
	})
	return n, err
}

// KnownNuclides lists every nuclide name the catalog can resolve by name.
func (s *Service) KnownNuclides() []string { return s.nuclides.Known() }

// PointSourceRequest describes an on-site dose-rate table.
type PointSourceRequest struct {
	Nuclide    string
	ActivityCi float64
	// Distances in metres and exposed fractions; nil uses the
	// pointsource defaults.
	Distances []float64
	Fractions []float64
	Unit      pointsource.Unit
}

// PointSourceResult is the dose-rate table with the spectrum it used.
type PointSourceResult struct {
	Spectrum pointsource.Spectrum `json:"spectrum"`
	Unit     pointsource.Unit     `json:"unit"`
	Points   []pointsource.Point  `json:"points"`
}

// PointSourceDose evaluates the unshielded point-source dose rate table.
// A nuclide with no qualifying gamma lines yields an all-zero table.
func (s *Service) PointSourceDose(ctx context.Context, req PointSourceRequest) (PointSourceResult, error) {
	var out PointSourceResult
	err := s.run(ctx, OpPointSourceDose, func(context.Context) (string, error) {
		name := strings.TrimSpace(req.Nuclide)
		if name == "" {
			return "", fmt.Errorf("%w: empty nuclide identifier", domain.ErrInvalidInput)
		}
		unit := req.Unit
		if unit == "" {
			unit = pointsource.UnitMilliSievertPerHour
		}
		spectrum := pointsource.Lines(s.catalog, name)
		if len(spectrum.Lines) == 0 {
			s.logger.Warn("no gamma lines above cutoff", "nuclide", name)
		}
		points, err := pointsource.Table(spectrum.Lines, req.ActivityCi, req.Distances, req.Fractions, unit)
		if err != nil {
			return name, err
		}
		out = PointSourceResult{Spectrum: spectrum, Unit: unit, Points: points}
		return name, nil
	})
	return out, err
}

// Report fetches an archived report.
func (s *Service) Report(ctx context.Context, id string) (domain.Report, error) {
	var report domain.Report
	err := s.run(ctx, OpGetReport, func(ctx context.Context) (string, error) {
		if s.archive == nil {
			return id, ErrNoArchive
		}
		var err error
		report, err = s.archive.GetReport(ctx, id)
		return id, err
	})
	return report, err
}

// Reports lists archived reports, newest first.
func (s *Service) Reports(ctx context.Context) ([]domain.ReportSummary, error) {
	var out []domain.ReportSummary
	err := s.run(ctx, OpListReports, func(ctx context.Context) (string, error) {
		if s.archive == nil {
			return "", ErrNoArchive
		}
		var err error
		out, err = s.archive.ListReports(ctx)
		return "", err
	})
	return out, err
}
