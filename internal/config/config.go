// Package config loads process configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrEmptySecrets is returned when either shared secret is blank.
// Starting without secrets would leave the repository wide open.
var ErrEmptySecrets = errors.New("config: secrets are empty")

// Config is the immutable process configuration. It is constructed once
// at startup and passed explicitly to the components that need it.
type Config struct {
	Port       int    `env:"PORT" envDefault:"80"`
	TrustProxy bool   `env:"TRUST_PROXY" envDefault:"false"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Shared secrets. Upload implies download; the two values may
	// coincide, in which case callers are treated as uploaders.
	SecretUpload   string `env:"SECRET_UPLOAD"`
	SecretDownload string `env:"SECRET_DOWNLOAD"`

	// DataDir holds the files/, uploads/ and logs/ subfolders.
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// StorageBackend selects "local" (default) or "s3".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Bucket       string `env:"S3_BUCKET"`

	// DatabaseURL enables the Postgres audit trail when set.
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load reads a .env file if present, parses the environment and
// validates the result.
func Load() (Config, error) {
	// The .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if strings.TrimSpace(cfg.SecretUpload) == "" || strings.TrimSpace(cfg.SecretDownload) == "" {
		return Config{}, ErrEmptySecrets
	}

	switch cfg.StorageBackend {
	case "local", "s3":
	default:
		return Config{}, fmt.Errorf("config: unknown storage backend %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// FilesDir is the storage root for the local backend.
func (c Config) FilesDir() string {
	return filepath.Join(c.DataDir, "files")
}

// UploadsDir is the staging spool for in-flight uploads. It sits next
// to FilesDir so the commit rename stays on one filesystem.
func (c Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

func (c Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
