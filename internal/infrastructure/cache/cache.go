package cache

import (
	"context"
	"time"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// Cache is a small read cache for meeting detail responses. Records are
// immutable once written, so cached entries never need invalidation beyond
// their TTL.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, expiration time.Duration)
}

// New selects a cache implementation from configuration.
func New(cfg *config.CacheConfig) (Cache, error) {
	if cfg.Backend == "redis" {
		return NewRedisCache(cfg)
	}
	return NewMemoryStore(), nil
}
