package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds all resolved qgen state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	QgenHome        string // ~/.qgen or QGEN_HOME
	ConfigPath      string // config.toml or QGEN_CONFIG_PATH
	CredentialsPath string // credentials.json or QGEN_CREDENTIALS_PATH
	CacheDBPath     string // questionnaires.db or QGEN_CACHE_DB
}

// ResolvePaths returns all qgen paths, respecting env var overrides.
// Environment variables:
//   - QGEN_HOME: base directory for all qgen state (default: ~/.qgen)
//   - QGEN_CONFIG_PATH: client config file (default: $QGEN_HOME/config.toml)
//   - QGEN_CREDENTIALS_PATH: credentials file (default: $QGEN_HOME/credentials.json)
//   - QGEN_CACHE_DB: local questionnaire cache (default: $QGEN_HOME/questionnaires.db)
//
// If QGEN_HOME is set, it becomes the base for all default paths. Specific
// env vars override both the default and the QGEN_HOME base.
func ResolvePaths() (*Paths, error) {
	home, err := resolveQgenHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		QgenHome:        home,
		ConfigPath:      resolvePathWithEnv("QGEN_CONFIG_PATH", home, "config.toml"),
		CredentialsPath: resolvePathWithEnv("QGEN_CREDENTIALS_PATH", home, "credentials.json"),
		CacheDBPath:     resolvePathWithEnv("QGEN_CACHE_DB", home, "questionnaires.db"),
	}, nil
}

// resolveQgenHome returns the qgen home directory from QGEN_HOME or ~/.qgen.
func resolveQgenHome() (string, error) {
	if v := os.Getenv("QGEN_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".qgen"), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
