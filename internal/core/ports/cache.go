// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository is the caching port used by services and workers.
type CacheRepository interface {
	Set(ctx context.Context, key string, value any) error
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// GetOrSet reads through the cache, running fetch on a miss.
	GetOrSet(ctx context.Context, key string, dest any,
		fetch func() (any, error), ttl time.Duration) error

	Increment(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
}
