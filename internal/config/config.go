// Package config loads process configuration from MENDEL_* environment
// variables. Command-line flags override individual fields afterwards.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"mendel/internal/blob"
	"mendel/internal/core"
)

// Config is the full runtime configuration.
type Config struct {
	HTTPAddr      string        `env:"MENDEL_HTTP_ADDR"      envDefault:":8080"`
	LogLevel      string        `env:"MENDEL_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string        `env:"MENDEL_LOG_FORMAT"     envDefault:"json"`
	CrossTTL      time.Duration `env:"MENDEL_CROSS_TTL"      envDefault:"30m"`
	DefaultLocale string        `env:"MENDEL_DEFAULT_LOCALE" envDefault:"en-US"`
	ShutdownGrace time.Duration `env:"MENDEL_SHUTDOWN_GRACE" envDefault:"10s"`

	Storage StorageConfig
	Blob    BlobConfig
}

// StorageConfig selects the session store.
type StorageConfig struct {
	Driver      string `env:"MENDEL_STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath  string `env:"MENDEL_SQLITE_PATH"    envDefault:"mendel.db"`
	PostgresDSN string `env:"MENDEL_POSTGRES_DSN"`
}

// BlobConfig selects where exports are written.
type BlobConfig struct {
	Driver      string `env:"MENDEL_BLOB_DRIVER"         envDefault:"fs"`
	FSRoot      string `env:"MENDEL_BLOB_FS_ROOT"        envDefault:"./blobdata"`
	S3Bucket    string `env:"MENDEL_BLOB_S3_BUCKET"`
	S3Region    string `env:"MENDEL_BLOB_S3_REGION"      envDefault:"us-east-1"`
	S3Endpoint  string `env:"MENDEL_BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `env:"MENDEL_BLOB_S3_PATH_STYLE"`
	S3AccessKey string `env:"MENDEL_BLOB_S3_ACCESS_KEY_ID"`
	S3SecretKey string `env:"MENDEL_BLOB_S3_SECRET_ACCESS_KEY"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	switch core.StorageDriver(c.Storage.Driver) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("invalid storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(c.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3Bucket == "" {
			return fmt.Errorf("MENDEL_BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	default:
		return fmt.Errorf("invalid blob driver %q", c.Blob.Driver)
	}
	if c.CrossTTL <= 0 {
		return fmt.Errorf("cross TTL must be positive, got %s", c.CrossTTL)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// StorageOptions converts the storage section for core.OpenSessionStore.
func (c Config) StorageOptions() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobOptions converts the blob section for blob.Open.
func (c Config) BlobOptions() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          c.Blob.S3Region,
			Bucket:          c.Blob.S3Bucket,
			Endpoint:        c.Blob.S3Endpoint,
			AccessKeyID:     c.Blob.S3AccessKey,
			SecretAccessKey: c.Blob.S3SecretKey,
			PathStyle:       c.Blob.S3PathStyle,
		},
	}
}
