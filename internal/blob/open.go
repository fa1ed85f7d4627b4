package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	fsstore "hazcat/internal/infra/blob/fs"
	memorystore "hazcat/internal/infra/blob/memory"
	s3store "hazcat/internal/infra/blob/s3"
)

// S3Config configures the S3 / MinIO driver.
type S3Config = s3store.Config

// Config selects and configures a blob backend.
type Config struct {
	Driver Driver   `yaml:"driver"`
	FSRoot string   `yaml:"fs_root,omitempty"`
	S3     S3Config `yaml:"s3,omitempty"`
}

// ConfigFromEnv reads the blob configuration from the process environment.
//
//	HAZCAT_BLOB_DRIVER: fs|s3|memory (default fs)
//	HAZCAT_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	HAZCAT_BLOB_S3_BUCKET, HAZCAT_BLOB_S3_REGION, HAZCAT_BLOB_S3_ENDPOINT,
//	HAZCAT_BLOB_S3_PATH_STYLE, HAZCAT_BLOB_S3_ACCESS_KEY_ID,
//	HAZCAT_BLOB_S3_SECRET_ACCESS_KEY, HAZCAT_BLOB_S3_SESSION_TOKEN
func ConfigFromEnv() Config {
	driver := Driver(os.Getenv("HAZCAT_BLOB_DRIVER"))
	if driver == "" {
		driver = DriverFilesystem
	}
	return Config{
		Driver: driver,
		FSRoot: os.Getenv("HAZCAT_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:          os.Getenv("HAZCAT_BLOB_S3_BUCKET"),
			Region:          os.Getenv("HAZCAT_BLOB_S3_REGION"),
			Endpoint:        os.Getenv("HAZCAT_BLOB_S3_ENDPOINT"),
			PathStyle:       strings.EqualFold(os.Getenv("HAZCAT_BLOB_S3_PATH_STYLE"), "true"),
			AccessKeyID:     os.Getenv("HAZCAT_BLOB_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("HAZCAT_BLOB_S3_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("HAZCAT_BLOB_S3_SESSION_TOKEN"),
		},
	}
}

// Open selects a Store implementation using environment variables.
func Open(ctx context.Context) (Store, error) {
	return OpenConfig(ctx, ConfigFromEnv())
}

// OpenConfig constructs the Store described by cfg.
func OpenConfig(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// NewFilesystem constructs a filesystem-backed Store rooted at root.
func NewFilesystem(root string) (Store, error) {
	return fsstore.New(root)
}

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewS3 constructs an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	return s3store.New(ctx, cfg)
}
