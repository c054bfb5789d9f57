package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SECRET_UPLOAD", "up")
	t.Setenv("SECRET_DOWNLOAD", "down")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 80 {
		t.Errorf("Port = %d, want 80", cfg.Port)
	}
	if cfg.StorageBackend != "local" {
		t.Errorf("StorageBackend = %q, want local", cfg.StorageBackend)
	}
	if cfg.Addr() != ":80" {
		t.Errorf("Addr = %q, want :80", cfg.Addr())
	}
	if cfg.FilesDir() != filepath.Join("data", "files") {
		t.Errorf("FilesDir = %q", cfg.FilesDir())
	}
	if cfg.UploadsDir() != filepath.Join("data", "uploads") {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir())
	}
	if cfg.LogsDir() != filepath.Join("data", "logs") {
		t.Errorf("LogsDir = %q", cfg.LogsDir())
	}
}

func TestLoadRejectsEmptySecrets(t *testing.T) {
	tests := []struct {
		name     string
		upload   string
		download string
	}{
		{"both empty", "", ""},
		{"upload empty", "", "down"},
		{"download empty", "up", ""},
		{"whitespace only", "   ", "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SECRET_UPLOAD", tt.upload)
			t.Setenv("SECRET_DOWNLOAD", tt.download)

			if _, err := Load(); !errors.Is(err, ErrEmptySecrets) {
				t.Errorf("err = %v, want ErrEmptySecrets", err)
			}
		})
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "tape")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("DATA_DIR", "/var/lib/repo")
	t.Setenv("STORAGE_BACKEND", "s3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || !cfg.TrustProxy {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.FilesDir() != filepath.Join("/var/lib/repo", "files") {
		t.Errorf("FilesDir = %q", cfg.FilesDir())
	}
	if cfg.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %q, want s3", cfg.StorageBackend)
	}
}
