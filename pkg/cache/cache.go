// Package cache provides the small key/value cache behind image probing and
// the retry helper shared by the network-backed alignment stores.
//
// Two implementations ship: [FileCache] for the CLI (entries under the user
// cache directory) and [NullCache] when caching is disabled. [Scoped] prefixes
// keys so several consumers can share one directory.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented store with optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for I/O
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ProbeKey returns the cache key for the pixel size of the file at path,
// invalidated whenever the file's size or modification time changes.
func ProbeKey(path string, size int64, modTime time.Time) string {
	return hashKey("probe", path, size, modTime.UTC().UnixNano())
}
