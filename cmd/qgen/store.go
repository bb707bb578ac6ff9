package main

import (
	"fmt"
	"os"
	"path/filepath"

	"qgen/pkg/sessionstore"
)

// openCache opens the local questionnaire cache, creating the qgen home
// directory on first use.
func openCache(paths *Paths) (*sessionstore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(paths.CacheDBPath), 0o700); err != nil {
		return nil, fmt.Errorf("create qgen home: %w", err)
	}
	return sessionstore.Open(paths.CacheDBPath)
}
