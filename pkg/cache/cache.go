// Package cache stores registry and source-host responses between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the shared HTTP service, and [NullCache] when caching is disabled.
// Values are opaque bytes with a per-entry TTL; callers choose the encoding.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any held connections.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Open creates the cache named by backend. dir is used by the file backend
// and url by the redis backend.
func Open(backend, dir, url string) (Cache, error) {
	switch backend {
	case BackendFile, "":
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(url)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
