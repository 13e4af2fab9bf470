package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Michael-Yan-wun/meeting-tools/pkg/config"
)

// RedisCache backs the read cache with a shared Redis instance, so multiple
// service replicas share one working set.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Set stores a key-value pair with expiration. Cache write failures are
// ignored; the store remains the source of truth.
func (rc *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) {
	_ = rc.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key.
func (rc *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Close releases the underlying connection pool.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
