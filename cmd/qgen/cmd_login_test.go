package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qgen/pkg/auth"
)

func TestLoginCmd_TokenFlag(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QGEN_HOME", home)
	t.Setenv("QGEN_CREDENTIALS_PATH", "")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"login", "--token", "tok-xyz"})

	if err := root.Execute(); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "credentials.json"))
	if err != nil {
		t.Fatalf("read credentials: %v", err)
	}
	var creds auth.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		t.Fatalf("unmarshal credentials: %v", err)
	}
	if creds.AccessToken != "tok-xyz" {
		t.Errorf("expected saved token, got %q", creds.AccessToken)
	}
	if !strings.Contains(buf.String(), "credentials saved") {
		t.Errorf("expected confirmation output, got:\n%s", buf.String())
	}
}

func TestLoginCmd_PromptsWhenFlagOmitted(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QGEN_HOME", home)
	t.Setenv("QGEN_CREDENTIALS_PATH", "")

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetIn(strings.NewReader("tok-prompted\n"))
	root.SetArgs([]string{"login"})

	if err := root.Execute(); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "credentials.json"))
	if err != nil {
		t.Fatalf("read credentials: %v", err)
	}
	if !strings.Contains(string(data), "tok-prompted") {
		t.Errorf("expected prompted token persisted, got:\n%s", data)
	}
}

func TestLoginCmd_RejectsEmptyToken(t *testing.T) {
	t.Setenv("QGEN_HOME", t.TempDir())
	t.Setenv("QGEN_CREDENTIALS_PATH", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetIn(strings.NewReader("\n"))
	root.SetArgs([]string{"login"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for empty token")
	}
}
