package store

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps the chart in memory. It backs scratch documents that have
// no file yet and keeps tests off the filesystem.
type MemStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

// Load returns a copy of the stored bytes, or (nil, nil) before the first
// save.
func (s *MemStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	return slices.Clone(s.data), nil
}

// Save stores a copy of data.
func (s *MemStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
	return nil
}

// Location identifies the store for display.
func (s *MemStore) Location() string { return "memory" }

func (s *MemStore) Close() error { return nil }

var _ Store = (*MemStore)(nil)
