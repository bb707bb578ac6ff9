package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("QGEN_BACKEND_URL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BackendURL != defaultBackendURL {
		t.Errorf("expected default backend URL, got %q", cfg.BackendURL)
	}
	if cfg.RequestTimeout() != 0 {
		t.Errorf("expected zero timeout, got %v", cfg.RequestTimeout())
	}
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	t.Setenv("QGEN_BACKEND_URL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `backend_url = "https://compliance.example.com"
project_id = "p1"
timeout_seconds = 120
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BackendURL != "https://compliance.example.com" {
		t.Errorf("unexpected backend URL %q", cfg.BackendURL)
	}
	if cfg.ProjectID != "p1" {
		t.Errorf("unexpected project id %q", cfg.ProjectID)
	}
	if cfg.RequestTimeout() != 2*time.Minute {
		t.Errorf("unexpected timeout %v", cfg.RequestTimeout())
	}
}

func TestLoadConfig_EnvOverridesBackendURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`backend_url = "https://from-file"`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QGEN_BACKEND_URL", "https://from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BackendURL != "https://from-env" {
		t.Errorf("expected env override, got %q", cfg.BackendURL)
	}
}

func TestLoadConfig_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`backend_url = [broken`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error for malformed config")
	}
}
