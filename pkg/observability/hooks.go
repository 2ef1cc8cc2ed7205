// Package observability lets callers watch drawalign without the library
// depending on a metrics or tracing backend.
//
// Four hook families cover alignment math, store operations, probe cache
// lookups and HTTP requests. Each starts as a no-op; a binary that wants
// metrics installs its own implementation once at startup:
//
//	observability.SetStoreHooks(promStoreHooks{})
//
// and the libraries report through the getters:
//
//	start := time.Now()
//	rec, err := backend.Save(ctx, rec)
//	observability.Store().OnStoreOp(ctx, "redis", "save", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Align Hooks
// =============================================================================

// AlignHooks receives events from transform computation.
type AlignHooks interface {
	// OnTransformComputed records a transform produced by source
	// ("points", "auto", "inverse", "session").
	OnTransformComputed(ctx context.Context, source string, scale, rotation float64)

	// OnAutoAlign records the outcome of a size-based alignment attempt.
	OnAutoAlign(ctx context.Context, success bool, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from alignment store operations.
type StoreHooks interface {
	// OnStoreOp records one operation ("save", "get", "delete", "list") on a backend.
	OnStoreOp(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAlignHooks is a no-op implementation of AlignHooks.
type NoopAlignHooks struct{}

func (NoopAlignHooks) OnTransformComputed(context.Context, string, float64, float64) {}
func (NoopAlignHooks) OnAutoAlign(context.Context, bool, time.Duration)              {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreOp(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	alignHooks AlignHooks = NoopAlignHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetAlignHooks registers custom align hooks.
// This should be called once at application startup.
func SetAlignHooks(h AlignHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		alignHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Align returns the registered align hooks.
func Align() AlignHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return alignHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	alignHooks = NoopAlignHooks{}
	storeHooks = NoopStoreHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
