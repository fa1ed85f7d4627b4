package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hazcat/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStorePutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "refdata/atomic_mass.csv", bytes.NewReader([]byte("Nuclide,Atomic Mass\n")), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"table": "atomic_mass"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "refdata/atomic_mass.csv" || info.Size != 20 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "refdata/atomic_mass.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	head, err := store.Head(ctx, "refdata/atomic_mass.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag || head.Metadata["table"] != "atomic_mass" {
		t.Fatalf("head mismatch %+v", head)
	}
	_, rc, err := store.Get(ctx, "refdata/atomic_mass.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(body) != "Nuclide,Atomic Mass\n" {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := store.Put(ctx, "reports/r1/report.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put report: %v", err)
	}
	list, err := store.List(ctx, "refdata/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "refdata/atomic_mass.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 2 || all[0].Key != "refdata/atomic_mass.csv" {
		t.Fatalf("list all: %v %+v", err, all)
	}

	existed, err := store.Delete(ctx, "refdata/atomic_mass.csv")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = store.Delete(ctx, "refdata/atomic_mass.csv")
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "refdata", "atomic_mass.csv.meta")); !os.IsNotExist(err) {
		t.Fatalf("expected sidecar removed, got %v", err)
	}
}

func TestStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, _, err := store.Get(ctx, "nope.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "nope.csv"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	url, err := store.PresignURL(ctx, "reports/r1/report.csv", core.SignedURLOptions{})
	if err != nil || url != "http://local.blob/reports/r1/report.csv" {
		t.Fatalf("presign: %q %v", url, err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPutReaderFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "bad.csv", failingReader{}, core.PutOptions{}); err == nil {
		t.Fatalf("expected read failure")
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty store, got %v %+v", err, list)
	}
	if _, err := store.Put(ctx, "bad.csv", strings.NewReader("ok"), core.PutOptions{}); err != nil {
		t.Fatalf("retry put: %v", err)
	}
}
