package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// defaultBackendURL is used when neither config nor environment name one.
const defaultBackendURL = "http://localhost:8000"

// Config is the ~/.qgen/config.toml structure. Every field is optional;
// zero values fall back to defaults at load time.
type Config struct {
	BackendURL     string `toml:"backend_url"`
	ProjectID      string `toml:"project_id,omitempty"`
	AssessmentID   string `toml:"assessment_id,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty"`
}

// LoadConfig reads the config file at path. A missing file is not an
// error; it yields the defaults. QGEN_BACKEND_URL overrides the
// configured backend URL either way.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{BackendURL: defaultBackendURL}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.BackendURL == "" {
			cfg.BackendURL = defaultBackendURL
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("QGEN_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	return cfg, nil
}

// RequestTimeout returns the configured request timeout, or zero to let
// the transport use its default.
func (c *Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
