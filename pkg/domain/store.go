package domain

import (
	"context"
	"fmt"
	"time"
)

// EntityType names a persisted record kind in not-found errors.
type EntityType string

// Persisted entity kinds.
const (
	EntityReport         EntityType = "report"
	EntityReferenceTable EntityType = "reference table"
)

// ErrNotFound is returned by stores when a record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ReportSummary is the listing view of an archived report.
type ReportSummary struct {
	ID        string    `json:"id"`
	Facility  string    `json:"facility,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Nuclides  int       `json:"nuclides"`
	Failed    int       `json:"failed"`
}

// Summary returns the listing view of r.
func (r Report) Summary() ReportSummary {
	s := ReportSummary{ID: r.ID, Facility: r.Facility, CreatedAt: r.CreatedAt, Nuclides: len(r.Results)}
	for _, res := range r.Results {
		if res.Failed() {
			s.Failed++
		}
	}
	return s
}

// ReportArchive persists completed reports. Saving an existing ID replaces it.
type ReportArchive interface {
	SaveReport(ctx context.Context, report Report) error
	GetReport(ctx context.Context, id string) (Report, error)
	// ListReports returns summaries newest first.
	ListReports(ctx context.Context) ([]ReportSummary, error)
}
