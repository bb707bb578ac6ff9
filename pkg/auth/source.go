// Package auth supplies bearer credentials to the backend transport.
// Credentials live in a small JSON file (written by `qgen login` or by
// an external login flow); a file watcher picks up out-of-band token
// refreshes so long-running generations keep authenticating.
package auth

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Credentials is the on-disk credential file shape.
type Credentials struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at,omitempty"` // RFC 3339, informational
}

// FileSource reads a bearer token from a credentials file and caches it.
// A missing or unreadable file yields an empty token, which downgrades
// requests to anonymous rather than failing them.
type FileSource struct {
	path string

	mu    sync.Mutex
	token string
	fresh bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileSource creates a source for the credentials file at path and
// tries to watch the containing directory for changes. Watch failures
// are not fatal: the source falls back to re-reading on every Token call.
func NewFileSource(path string) *FileSource {
	s := &FileSource{path: path, done: make(chan struct{})}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return s
	}
	// Watch the directory, not the file: login flows replace the file
	// atomically, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return s
	}

	s.watcher = watcher
	go s.watch(watcher)
	return s
}

// Token returns the current bearer token, or "" when none is available.
func (s *FileSource) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil || !s.fresh {
		s.token = readToken(s.path)
		s.fresh = s.watcher != nil
	}
	return s.token
}

// Close stops the file watcher. Token keeps working afterwards by
// re-reading the file on demand.
func (s *FileSource) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.fresh = false
	s.mu.Unlock()

	if w != nil {
		close(s.done)
		_ = w.Close()
	}
}

// watch invalidates the cached token when the credentials file changes.
// Events are debounced: atomic replace shows up as several events.
// The watcher is passed in rather than read from s.watcher, which Close
// nils out concurrently.
func (s *FileSource) watch(w *fsnotify.Watcher) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(100 * time.Millisecond)

		case <-timer.C:
			s.mu.Lock()
			s.fresh = false
			s.mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("auth: credentials watcher error: %v", err)

		case <-s.done:
			return
		}
	}
}

// readToken reads the access token from the credentials file at path.
func readToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return creds.AccessToken
}

// Save writes credentials to path with owner-only permissions, creating
// the parent directory if needed.
func Save(path string, creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
