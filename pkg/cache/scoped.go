package cache

import (
	"context"
	"time"
)

// scoped prefixes every key before delegating.
type scoped struct {
	inner  Cache
	prefix string
}

// Scoped returns a Cache that namespaces keys under prefix. A nil inner
// cache is replaced by NullCache.
func Scoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NullCache{}
	}
	return &scoped{inner: inner, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the underlying cache.
func (s *scoped) Close() error { return s.inner.Close() }
