// Package file persists the credential record as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nadzzz/maestro/internal/credential"
)

const (
	storeDirMode   = 0o700
	recordFileMode = 0o600
)

// Store reads and writes one credential record at a fixed path.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ credential.Store = (*Store)(nil)

// NewStore returns a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the location of the credential file.
func (s *Store) Path() string { return s.path }

// Load reads the record. A missing file yields credential.ErrNotFound and an
// undecodable one yields credential.ErrCorrupt.
func (s *Store) Load(ctx context.Context) (credential.Record, error) {
	if err := ctx.Err(); err != nil {
		return credential.Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return credential.Record{}, fmt.Errorf("read %s: %w", s.path, credential.ErrNotFound)
		}
		return credential.Record{}, fmt.Errorf("read credential file: %w", err)
	}

	var rec credential.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return credential.Record{}, fmt.Errorf("decode %s: %w: %v", s.path, credential.ErrCorrupt, err)
	}
	if rec.AccessToken == "" && rec.RefreshToken == "" {
		return credential.Record{}, fmt.Errorf("decode %s: %w: no tokens", s.path, credential.ErrCorrupt)
	}

	return rec, nil
}

// Save replaces the record atomically: the JSON is written to a temporary
// file in the same directory and renamed over the old one.
func (s *Store) Save(ctx context.Context, rec credential.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := tmp.Chmod(recordFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp credential file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp credential file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
