package core

import (
	"context"
	"fmt"
	"os"

	"hazcat/internal/blob"
	"hazcat/internal/infra/persistence/memory"
	"hazcat/internal/infra/persistence/postgres"
	"hazcat/internal/infra/persistence/sqlite"
	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// StorageDriver selects the persistent store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
)

// PersistentStore holds imported reference tables and archived reports.
type PersistentStore interface {
	refdata.Store
	domain.ReportArchive
	ImportTables(ctx context.Context, src refdata.Store) ([]refdata.TableName, error)
}

var (
	_ PersistentStore = (*memory.Store)(nil)
	_ PersistentStore = (*sqlite.Store)(nil)
	_ PersistentStore = (*postgres.Store)(nil)
)

// StorageConfig configures OpenPersistentStore.
type StorageConfig struct {
	Driver      StorageDriver `yaml:"driver"`
	SQLitePath  string        `yaml:"sqlite_path,omitempty"`
	PostgresDSN string        `yaml:"postgres_dsn,omitempty"`
}

// StorageConfigFromEnv reads HAZCAT_STORAGE_DRIVER (default sqlite),
// HAZCAT_SQLITE_PATH and HAZCAT_POSTGRES_DSN.
func StorageConfigFromEnv() StorageConfig {
	driver := StorageDriver(os.Getenv("HAZCAT_STORAGE_DRIVER"))
	if driver == "" {
		driver = StorageSQLite
	}
	return StorageConfig{
		Driver:      driver,
		SQLitePath:  os.Getenv("HAZCAT_SQLITE_PATH"),
		PostgresDSN: os.Getenv("HAZCAT_POSTGRES_DSN"),
	}
}

// OpenPersistentStore constructs the store described by cfg.
func OpenPersistentStore(ctx context.Context, cfg StorageConfig) (PersistentStore, error) {
	switch cfg.Driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite, "":
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// RefdataSource selects where reference tables are read from.
type RefdataSource string

const (
	// RefdataEmbedded uses the CSV bundle compiled into the binary.
	RefdataEmbedded RefdataSource = "embedded"
	// RefdataBlob reads <prefix>/<table>.csv objects from the blob store.
	RefdataBlob RefdataSource = "blob"
	// RefdataStore reads tables previously imported into the persistent store.
	RefdataStore RefdataSource = "store"
)

// RefdataConfig configures LoadCatalog.
type RefdataConfig struct {
	Source     RefdataSource `yaml:"source"`
	BlobPrefix string        `yaml:"blob_prefix,omitempty"`
}

// RefdataConfigFromEnv reads HAZCAT_REFDATA_DRIVER (default embedded) and
// HAZCAT_REFDATA_PREFIX.
func RefdataConfigFromEnv() RefdataConfig {
	src := RefdataSource(os.Getenv("HAZCAT_REFDATA_DRIVER"))
	if src == "" {
		src = RefdataEmbedded
	}
	return RefdataConfig{Source: src, BlobPrefix: os.Getenv("HAZCAT_REFDATA_PREFIX")}
}

// RefdataDeps supplies the backends a non-embedded source reads from. Only
// the one the configured source needs must be set.
type RefdataDeps struct {
	Blob  blob.Store
	Store refdata.Store
}

// ReferenceStore resolves cfg to a refdata.Store.
func ReferenceStore(cfg RefdataConfig, deps RefdataDeps) (refdata.Store, error) {
	switch cfg.Source {
	case RefdataEmbedded, "":
		return refdata.Embedded(), nil
	case RefdataBlob:
		if deps.Blob == nil {
			return nil, fmt.Errorf("refdata source %s requires a blob store", cfg.Source)
		}
		return refdata.NewBlobStore(deps.Blob, cfg.BlobPrefix), nil
	case RefdataStore:
		if deps.Store == nil {
			return nil, fmt.Errorf("refdata source %s requires a persistent store", cfg.Source)
		}
		return deps.Store, nil
	default:
		return nil, fmt.Errorf("unknown refdata source %q", cfg.Source)
	}
}

// LoadCatalog reads and indexes every reference table from the configured source.
func LoadCatalog(ctx context.Context, cfg RefdataConfig, deps RefdataDeps) (*refdata.Catalog, error) {
	store, err := ReferenceStore(cfg, deps)
	if err != nil {
		return nil, err
	}
	return refdata.Load(ctx, store)
}
