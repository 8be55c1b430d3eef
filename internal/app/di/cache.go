package di

import (
	"context"
	"errors"
	"log/slog"

	"goldeye_backend/internal/platform/cache"
	platformredis "goldeye_backend/internal/platform/redis"
)

// NewCache creates the shared cache. If Redis is configured and reachable, it
// returns a Redis-backed cache. Otherwise, it falls back to an in-memory store.
// The returned close function releases the Redis connection, if any.
func NewCache(ctx context.Context, cfg platformredis.Config) (*cache.Cache, func()) {
	rdb, err := platformredis.NewRedisClient(ctx, cfg)
	if err != nil {
		if !errors.Is(err, platformredis.ErrNotConfigured) {
			slog.Warn("redis unavailable; using in-memory cache", "addr", cfg.Addr(), "error", err)
		}
		return cache.New(cache.NewMemoryStore(), ""), func() {}
	}
	slog.Info("using redis cache", "addr", cfg.Addr())
	return cache.New(cache.NewRedisStore(rdb), ""), func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}
}
