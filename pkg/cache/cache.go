// Package cache provides byte caching for fetched assets.
//
// Person nodes reference photos by URL, and every export or serve session
// would refetch them without a cache in between. This package defines the
// [Cache] interface and three backends:
//   - file: hashed entry files under ~/.cache/stemma/avatars (default)
//   - redis: shared cache for multi-instance serve deployments
//   - none: caching disabled
//
// # Usage
//
// Create a backend from configuration:
//
//	c, err := cache.New(ctx, cache.Config{Backend: cache.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
// Store and retrieve entries under hashed keys:
//
//	key := cache.Key("avatar", photoURL)
//	data, ok, err := c.Get(ctx, key)
//	if !ok {
//	    data = fetch(photoURL)
//	    c.Set(ctx, key, data, 24*time.Hour)
//	}
package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [New] and the cache config key.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves the data stored under key.
	// A missing or expired entry is a miss (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and parameterizes a cache backend.
type Config struct {
	Backend   string // file, redis, or none; empty defaults to file
	Dir       string // file backend directory; empty uses the default
	RedisAddr string // redis backend address (host:port)
}

// New creates the cache backend described by cfg.
// Unknown backend names return [ErrUnsupportedBackend].
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.RedisAddr)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
