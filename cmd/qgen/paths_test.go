package main

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QGEN_HOME", home)
	t.Setenv("QGEN_CONFIG_PATH", "")
	t.Setenv("QGEN_CREDENTIALS_PATH", "")
	t.Setenv("QGEN_CACHE_DB", "")

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}

	if paths.QgenHome != home {
		t.Errorf("expected home %s, got %s", home, paths.QgenHome)
	}
	if paths.ConfigPath != filepath.Join(home, "config.toml") {
		t.Errorf("unexpected config path %s", paths.ConfigPath)
	}
	if paths.CredentialsPath != filepath.Join(home, "credentials.json") {
		t.Errorf("unexpected credentials path %s", paths.CredentialsPath)
	}
	if paths.CacheDBPath != filepath.Join(home, "questionnaires.db") {
		t.Errorf("unexpected cache path %s", paths.CacheDBPath)
	}
}

func TestResolvePaths_SpecificEnvOverrides(t *testing.T) {
	home := t.TempDir()
	other := t.TempDir()
	t.Setenv("QGEN_HOME", home)
	t.Setenv("QGEN_CONFIG_PATH", filepath.Join(other, "cfg.toml"))
	t.Setenv("QGEN_CREDENTIALS_PATH", filepath.Join(other, "creds.json"))
	t.Setenv("QGEN_CACHE_DB", filepath.Join(other, "cache.db"))

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}

	if paths.ConfigPath != filepath.Join(other, "cfg.toml") {
		t.Errorf("expected config override, got %s", paths.ConfigPath)
	}
	if paths.CredentialsPath != filepath.Join(other, "creds.json") {
		t.Errorf("expected credentials override, got %s", paths.CredentialsPath)
	}
	if paths.CacheDBPath != filepath.Join(other, "cache.db") {
		t.Errorf("expected cache override, got %s", paths.CacheDBPath)
	}
}
