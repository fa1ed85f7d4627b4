package refdata

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"hazcat/internal/blob"
)

// ErrTableNotFound is returned by a Store that does not carry a table.
var ErrTableNotFound = errors.New("reference table not found")

// Store supplies the raw rows of a reference table.
type Store interface {
	Rows(ctx context.Context, table TableName) ([]Row, error)
}

//go:embed data/*.csv
var seed embed.FS

// FSStore reads tables as <dir>/<table>.csv from a file system.
type FSStore struct {
	fsys fs.FS
	dir  string
}

// NewFSStore returns a store over fsys rooted at dir ("." for the root).
func NewFSStore(fsys fs.FS, dir string) *FSStore {
	if dir == "" {
		dir = "."
	}
	return &FSStore{fsys: fsys, dir: dir}
}

// Embedded returns the seed bundle compiled into the binary.
func Embedded() *FSStore {
	return NewFSStore(seed, "data")
}

// Rows implements Store.
func (s *FSStore) Rows(_ context.Context, table TableName) ([]Row, error) {
	f, err := s.fsys.Open(path.Join(s.dir, table.FileName()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer func() { _ = f.Close() }()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return rows, nil
}

// BlobStore reads tables as <prefix>/<table>.csv objects from a blob store,
// which lets a deployment keep reference data in S3 or MinIO.
type BlobStore struct {
	store  blob.Store
	prefix string
}

// NewBlobStore wraps a blob store. An empty prefix defaults to "refdata".
func NewBlobStore(store blob.Store, prefix string) *BlobStore {
	if prefix == "" {
		prefix = DefaultBlobPrefix
	}
	return &BlobStore{store: store, prefix: strings.TrimSuffix(prefix, "/")}
}

// DefaultBlobPrefix is the key prefix reference tables are published under.
const DefaultBlobPrefix = "refdata"

func (s *BlobStore) key(table TableName) string {
	return s.prefix + "/" + table.FileName()
}

// Rows implements Store.
func (s *BlobStore) Rows(ctx context.Context, table TableName) ([]Row, error) {
	_, rc, err := s.store.Get(ctx, s.key(table))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	defer func() { _ = rc.Close() }()
	rows, err := ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return rows, nil
}

// Publish copies every table src carries into the blob store as CSV objects.
// Existing objects are replaced. It returns the keys written.
func (s *BlobStore) Publish(ctx context.Context, src Store) ([]string, error) {
	var keys []string
	for _, spec := range Tables() {
		rows, err := src.Rows(ctx, spec.Name)
		if errors.Is(err, ErrTableNotFound) {
			continue
		}
		if err != nil {
			return keys, err
		}
		buf := &bytes.Buffer{}
		if err := WriteCSV(buf, spec.Columns, rows); err != nil {
			return keys, fmt.Errorf("encode %s: %w", spec.Name, err)
		}
		key := s.key(spec.Name)
		if _, err := s.store.Delete(ctx, key); err != nil {
			return keys, fmt.Errorf("replace %s: %w", key, err)
		}
		if _, err := s.store.Put(ctx, key, buf, blob.PutOptions{
			ContentType: "text/csv",
			Metadata:    map[string]string{"table": string(spec.Name), "rows": fmt.Sprint(len(rows))},
		}); err != nil {
			return keys, fmt.Errorf("put %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
