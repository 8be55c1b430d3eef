// Package cache provides a time-bounded get-or-compute cache with
// interchangeable storage backends.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is used when a caller passes a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// Store is the storage backend behind a Cache.
type Store interface {
	// Get returns the stored bytes and whether a live entry was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Name identifies the backend (e.g. "memory", "redis").
	Name() string
}

// Cache memoizes computed values for a bounded time-to-live.
// Concurrent callers asking for the same key while it is being computed
// share a single computation. Errors are never cached.
type Cache struct {
	store     Store
	namespace string
	group     singleflight.Group
}

// New creates a Cache on top of store. If namespace is empty, it uses "goldeye".
func New(store Store, namespace string) *Cache {
	if namespace == "" {
		namespace = "goldeye"
	}
	return &Cache{store: store, namespace: namespace}
}

// Backend returns the name of the underlying store.
func (c *Cache) Backend() string {
	return c.store.Name()
}

// Invalidate removes a cached entry.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.fullKey(key))
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result for ttl and returns it. Values are stored JSON encoded.
//
// compute runs detached from the caller's cancellation, so a caller that goes
// away neither fails the other callers waiting on key nor leaves a partial
// result behind. compute must bound its own run time.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	full := c.fullKey(key)

	// 1) Check cache
	if v, ok := load[T](ctx, c, full); ok {
		return v, nil
	}

	// 2) Compute once per key, even with concurrent callers
	return shared[T](ctx, c, full, func(ctx context.Context) (any, error) {
		if v, ok := load[T](ctx, c, full); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}
		// 3) Store (best effort)
		c.save(ctx, full, v, ttl)
		return v, nil
	})
}

// Refresh recomputes the value for key and overwrites the cached entry,
// regardless of whether the current one has expired. compute runs detached
// from ctx as in GetOrCompute.
func Refresh[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	full := c.fullKey(key)
	return shared[T](ctx, c, full, func(ctx context.Context) (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return v, err
		}
		c.save(ctx, full, v, ttl)
		return v, nil
	})
}

// shared runs fn once per key under a context that keeps ctx's values but not
// its cancellation. The caller stops waiting when ctx is done; fn keeps running.
func shared[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (any, error)) (T, error) {
	var zero T
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func load[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed", "key", key, "backend", c.store.Name(), "error", err)
		return out, false
	}
	if !ok || len(b) == 0 {
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		// Delete corrupted cache entry
		_ = c.store.Delete(ctx, key)
		return out, false
	}
	return out, true
}

func (c *Cache) save(ctx context.Context, key string, v any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, b, ttl); err != nil {
		slog.Warn("cache set failed", "key", key, "backend", c.store.Name(), "error", err)
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", c.namespace, key)
}

// Key joins parts into a cache key, escaping characters that are
// problematic for Redis keys.
func Key(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, safe(p))
	}
	return strings.Join(escaped, ":")
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
