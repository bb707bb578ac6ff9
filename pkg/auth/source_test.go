package auth_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qgen/pkg/auth"
)

func TestTokenFromMissingFile(t *testing.T) {
	s := auth.NewFileSource(filepath.Join(t.TempDir(), "credentials.json"))
	defer s.Close()

	if got := s.Token(); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}

func TestTokenFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := auth.NewFileSource(path)
	defer s.Close()

	if got := s.Token(); got != "" {
		t.Errorf("expected empty token for malformed file, got %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	creds := auth.Credentials{AccessToken: "tok-abc", ExpiresAt: "2026-09-01T00:00:00Z"}
	if err := auth.Save(path, creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got auth.Credentials
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != creds {
		t.Errorf("expected %+v, got %+v", creds, got)
	}

	s := auth.NewFileSource(path)
	defer s.Close()
	if tok := s.Token(); tok != "tok-abc" {
		t.Errorf("expected saved token, got %q", tok)
	}
}

func TestTokenPicksUpReplacement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := auth.Save(path, auth.Credentials{AccessToken: "old"}); err != nil {
		t.Fatal(err)
	}

	s := auth.NewFileSource(path)
	defer s.Close()
	if tok := s.Token(); tok != "old" {
		t.Fatalf("expected old token, got %q", tok)
	}

	// Atomic replace, the way a login flow rewrites the file.
	tmp := path + ".tmp"
	if err := auth.Save(tmp, auth.Credentials{AccessToken: "new"}); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.Token() == "new" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("token never refreshed, still %q", s.Token())
}

func TestTokenAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := auth.Save(path, auth.Credentials{AccessToken: "tok"}); err != nil {
		t.Fatal(err)
	}

	s := auth.NewFileSource(path)
	s.Close()

	// Without a watcher the source re-reads on demand.
	if tok := s.Token(); tok != "tok" {
		t.Errorf("expected token after close, got %q", tok)
	}
	if err := auth.Save(path, auth.Credentials{AccessToken: "tok2"}); err != nil {
		t.Fatal(err)
	}
	if tok := s.Token(); tok != "tok2" {
		t.Errorf("expected fresh read after close, got %q", tok)
	}
}
