// Package store persists serialized charts.
//
// A [Store] moves whole envelopes (the JSON produced by the document codec)
// in and out of a backing location. Implementations are safe for concurrent
// use; the document's autosave goroutine and the CLI share one store.
package store

import "context"

// Store is the persistence boundary for serialized charts.
type Store interface {
	// Load reads the persisted chart bytes. A location that has never been
	// saved returns (nil, nil), not an error.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the persisted chart with data.
	Save(ctx context.Context, data []byte) error

	// Location describes where the chart lives, for display.
	Location() string

	Close() error
}
