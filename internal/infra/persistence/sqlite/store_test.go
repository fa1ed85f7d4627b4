package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "hazcat.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Path() != path || store.DB() == nil {
		t.Fatalf("unexpected path/db %s", store.Path())
	}
	names, err := store.ImportTables(ctx, refdata.Embedded())
	if err != nil || len(names) == 0 {
		t.Fatalf("import: %v %v", names, err)
	}
	report := domain.Report{ID: "r-1", Facility: "hot cell", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.GetReport(ctx, "r-1")
	if err != nil || got.Facility != "hot cell" {
		t.Fatalf("report not restored: %+v %v", got, err)
	}
	catalog, err := refdata.Load(ctx, reopened)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, ok := catalog.First(refdata.TableNuclideMaster, "Cs-137"); !ok {
		t.Fatalf("expected Cs-137 after reopen")
	}
}

func TestSaveReportRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.SaveReport(ctx, domain.Report{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	var count int
	if err := store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing persisted, got %d rows", count)
	}
}

func TestLoadRejectsCorruptBucket(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corrupt.db")
	store, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?)`, "report/x", []byte("{")); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	_ = store.Close()
	if _, err := NewStore(ctx, path); err == nil {
		t.Fatalf("expected decode error on reopen")
	}
}
