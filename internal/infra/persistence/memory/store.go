// Package memory provides the in-memory store backing reference tables and
// archived reports. The SQL stores reuse it as their working set and snapshot
// its state after each write.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

var (
	_ domain.ReportArchive = (*Store)(nil)
	_ refdata.Store        = (*Store)(nil)
)

// Snapshot is the complete serialisable state of a store.
type Snapshot struct {
	Tables  map[refdata.TableName][]refdata.Row `json:"tables"`
	Reports map[string]domain.Report            `json:"reports"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		Tables:  make(map[refdata.TableName][]refdata.Row),
		Reports: make(map[string]domain.Report),
	}
}

func (s Snapshot) clone() Snapshot {
	out := newSnapshot()
	for name, rows := range s.Tables {
		out.Tables[name] = cloneRows(rows)
	}
	for id, r := range s.Reports {
		out.Reports[id] = r
	}
	return out
}

func cloneRows(rows []refdata.Row) []refdata.Row {
	out := make([]refdata.Row, len(rows))
	for i, row := range rows {
		c := make(refdata.Row, len(row))
		for k, v := range row {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

// Store is a concurrency-safe in-memory store.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newSnapshot()}
}

// ExportState returns a deep copy of the current state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ImportState replaces the current state with a copy of snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snapshot.clone()
}

// ImportTables copies every known table src carries, replacing existing
// copies. Tables src does not have are left untouched. It returns the tables
// imported.
func (s *Store) ImportTables(ctx context.Context, src refdata.Store) ([]refdata.TableName, error) {
	loaded := make(map[refdata.TableName][]refdata.Row)
	var names []refdata.TableName
	for _, spec := range refdata.Tables() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := src.Rows(ctx, spec.Name)
		if errors.Is(err, refdata.ErrTableNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", spec.Name, err)
		}
		loaded[spec.Name] = cloneRows(rows)
		names = append(names, spec.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, rows := range loaded {
		s.state.Tables[name] = rows
	}
	return names, nil
}

// Rows implements refdata.Store.
func (s *Store) Rows(_ context.Context, table refdata.TableName) ([]refdata.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.state.Tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", refdata.ErrTableNotFound, table)
	}
	return cloneRows(rows), nil
}

// TableNames lists the tables held, sorted.
func (s *Store) TableNames() []refdata.TableName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]refdata.TableName, 0, len(s.state.Tables))
	for name := range s.state.Tables {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SaveReport implements domain.ReportArchive.
func (s *Store) SaveReport(_ context.Context, report domain.Report) error {
	if report.ID == "" {
		return fmt.Errorf("%w: report id required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reports[report.ID] = report
	return nil
}

// GetReport implements domain.ReportArchive.
func (s *Store) GetReport(_ context.Context, id string) (domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.Reports[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound{Entity: domain.EntityReport, ID: id}
	}
	return r, nil
}

// ListReports implements domain.ReportArchive.
func (s *Store) ListReports(_ context.Context) ([]domain.ReportSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReportSummary, 0, len(s.state.Reports))
	for _, r := range s.state.Reports {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
