package cache

import "errors"

// Sentinel errors for cache configuration.
var (
	// ErrUnsupportedBackend is returned by New for an unknown backend name.
	ErrUnsupportedBackend = errors.New("unsupported cache backend")
)
