// Package config loads the hazcat configuration: a YAML file layered over
// defaults, then HAZCAT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"hazcat/internal/adapters/export"
	"hazcat/internal/blob"
	"hazcat/internal/core"
	"hazcat/internal/dcf"
	"hazcat/internal/threshold"
)

// DefaultFile is the config file the CLI reads when --config is not given
// and the file exists in the working directory.
const DefaultFile = "hazcat.yaml"

// Config is the complete hazcat configuration.
type Config struct {
	Log        LogConfig            `yaml:"log"`
	Storage    core.StorageConfig   `yaml:"storage"`
	Refdata    core.RefdataConfig   `yaml:"refdata"`
	Blob       blob.Config          `yaml:"blob"`
	Export     ExportConfig         `yaml:"export"`
	Engine     EngineConfig         `yaml:"engine"`
	Metrics    MetricsConfig        `yaml:"metrics"`
	Parameters threshold.Parameters `yaml:"parameters"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ExportConfig controls report artifacts written to the blob store.
type ExportConfig struct {
	Enabled bool     `yaml:"enabled"`
	Prefix  string   `yaml:"prefix"`
	Formats []string `yaml:"formats,omitempty"`
}

// EngineConfig tunes the evaluation.
type EngineConfig struct {
	// GammaLineE1 derives a missing photon energy from the gamma-line table.
	GammaLineE1 bool `yaml:"gamma_line_e1"`
	// DCFPriority reorders the DCF source tiers by name.
	DCFPriority []string `yaml:"dcf_priority,omitempty"`
}

// Metrics backends.
const (
	MetricsPrometheus = "prometheus"
	MetricsExpvar     = "expvar"
)

// MetricsConfig selects the operation metrics recorder.
type MetricsConfig struct {
	// Backend is prometheus or expvar.
	Backend string `yaml:"backend"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: "text"},
		Storage: core.StorageConfig{Driver: core.StorageSQLite},
		Refdata: core.RefdataConfig{Source: core.RefdataEmbedded},
		Blob:    blob.Config{Driver: blob.DriverFilesystem},
		Export: ExportConfig{
			Prefix: export.DefaultPrefix,
		},
		Metrics:    MetricsConfig{Backend: MetricsPrometheus},
		Parameters: threshold.DefaultParameters(),
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path
// (skipped when path is empty), then environment overrides. The result is
// validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge copies the non-zero values of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Storage.SQLitePath != "" {
		c.Storage.SQLitePath = other.Storage.SQLitePath
	}
	if other.Storage.PostgresDSN != "" {
		c.Storage.PostgresDSN = other.Storage.PostgresDSN
	}

	if other.Refdata.Source != "" {
		c.Refdata.Source = other.Refdata.Source
	}
	if other.Refdata.BlobPrefix != "" {
		c.Refdata.BlobPrefix = other.Refdata.BlobPrefix
	}

	if other.Blob.Driver != "" {
		c.Blob.Driver = other.Blob.Driver
	}
	if other.Blob.FSRoot != "" {
		c.Blob.FSRoot = other.Blob.FSRoot
	}
	if other.Blob.S3 != (blob.S3Config{}) {
		c.Blob.S3 = other.Blob.S3
	}

	if other.Export.Enabled {
		c.Export.Enabled = true
	}
	if other.Export.Prefix != "" {
		c.Export.Prefix = other.Export.Prefix
	}
	if len(other.Export.Formats) > 0 {
		c.Export.Formats = other.Export.Formats
	}

	if other.Engine.GammaLineE1 {
		c.Engine.GammaLineE1 = true
	}
	if len(other.Engine.DCFPriority) > 0 {
		c.Engine.DCFPriority = other.Engine.DCFPriority
	}

	if other.Metrics.Backend != "" {
		c.Metrics.Backend = other.Metrics.Backend
	}

	mergeParameters(&c.Parameters, other.Parameters)
}

// mergeParameters copies every non-zero constant of src into dst.
func mergeParameters(dst *threshold.Parameters, src threshold.Parameters) {
	d := reflect.ValueOf(dst).Elem()
	s := reflect.ValueOf(src)
	for i := 0; i < s.NumField(); i++ {
		if v := s.Field(i).Float(); v != 0 {
			d.Field(i).SetFloat(v)
		}
	}
}

// ApplyEnv overrides c with the HAZCAT_* variables that are set.
func (c *Config) ApplyEnv() {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	setString("HAZCAT_LOG_LEVEL", &c.Log.Level)
	setString("HAZCAT_LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("HAZCAT_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = core.StorageDriver(v)
	}
	setString("HAZCAT_SQLITE_PATH", &c.Storage.SQLitePath)
	setString("HAZCAT_POSTGRES_DSN", &c.Storage.PostgresDSN)

	if v := os.Getenv("HAZCAT_REFDATA_DRIVER"); v != "" {
		c.Refdata.Source = core.RefdataSource(v)
	}
	setString("HAZCAT_REFDATA_PREFIX", &c.Refdata.BlobPrefix)

	if v := os.Getenv("HAZCAT_BLOB_DRIVER"); v != "" {
		c.Blob.Driver = blob.Driver(v)
	}
	setString("HAZCAT_BLOB_FS_ROOT", &c.Blob.FSRoot)
	setString("HAZCAT_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	setString("HAZCAT_BLOB_S3_REGION", &c.Blob.S3.Region)
	setString("HAZCAT_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	setBool("HAZCAT_BLOB_S3_PATH_STYLE", &c.Blob.S3.PathStyle)
	setString("HAZCAT_BLOB_S3_ACCESS_KEY_ID", &c.Blob.S3.AccessKeyID)
	setString("HAZCAT_BLOB_S3_SECRET_ACCESS_KEY", &c.Blob.S3.SecretAccessKey)
	setString("HAZCAT_BLOB_S3_SESSION_TOKEN", &c.Blob.S3.SessionToken)

	setBool("HAZCAT_EXPORT_ENABLED", &c.Export.Enabled)
	setString("HAZCAT_EXPORT_PREFIX", &c.Export.Prefix)
	setBool("HAZCAT_GAMMA_LINE_E1", &c.Engine.GammaLineE1)
	setString("HAZCAT_METRICS_BACKEND", &c.Metrics.Backend)
}

// Validate checks that the configuration is usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	switch c.Storage.Driver {
	case core.StorageMemory, core.StorageSQLite:
	case core.StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Refdata.Source {
	case core.RefdataEmbedded, core.RefdataBlob, core.RefdataStore:
	default:
		errs = append(errs, fmt.Errorf("unknown refdata.source %q", c.Refdata.Source))
	}

	switch c.Blob.Driver {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob.s3.bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob.driver %q", c.Blob.Driver))
	}

	if _, err := c.ExportFormats(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Priority(); err != nil {
		errs = append(errs, fmt.Errorf("engine.dcf_priority: %w", err))
	}
	switch c.Metrics.Backend {
	case MetricsPrometheus, MetricsExpvar:
	default:
		errs = append(errs, fmt.Errorf("unknown metrics.backend %q", c.Metrics.Backend))
	}
	if err := c.Parameters.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("parameters: %w", err))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ExportFormats returns the configured artifact formats, or the exporter
// defaults when none are listed.
func (c *Config) ExportFormats() ([]export.Format, error) {
	if len(c.Export.Formats) == 0 {
		return export.DefaultFormats, nil
	}
	out := make([]export.Format, 0, len(c.Export.Formats))
	for _, name := range c.Export.Formats {
		f := export.Format(name)
		switch f {
		case export.FormatJSON, export.FormatCSV, export.FormatPathwaysCSV:
			out = append(out, f)
		default:
			return nil, fmt.Errorf("unknown export format %q", name)
		}
	}
	return out, nil
}

// Priority returns the DCF source tiers named by Engine.DCFPriority.
func (c *Config) Priority() ([]dcf.Tier, error) {
	return dcf.PriorityFromNames(c.Engine.DCFPriority)
}
