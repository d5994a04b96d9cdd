package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/stemma/pkg/errors"
)

// FileStore persists the chart as a single JSON file. Saves go through a
// temp file in the same directory followed by a rename, so a crash mid-write
// never leaves a truncated chart behind.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a store backed by the file at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := errors.ValidateChartPath(path); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorageFailed, err, "create chart directory %s", dir)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the chart file. A file that does not exist yet returns
// (nil, nil).
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStorageFailed, err, "read chart file %s", s.path)
	}
	return data, nil
}

// Save writes data to a temp file and renames it over the target.
func (s *FileStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "write chart file %s", s.path)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "chmod chart file %s", s.path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "close chart file %s", s.path)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStorageFailed, err, "replace chart file %s", s.path)
	}
	return nil
}

// Location returns the chart file path.
func (s *FileStore) Location() string { return s.path }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
