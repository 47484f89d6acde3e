// Package cache provides the recommendation cache backends.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	stylingapp "github.com/lookbook/backend/internal/application/styling"
	"github.com/lookbook/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "lookbook:"
	scanBatchSize    = 200
)

// RedisRecommendationCache implements RecommendationCache using Redis.
// It is shared by every API instance, so a rule change on one instance
// invalidates cached recommendations for all of them.
type RedisRecommendationCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRecommendationCache connects to Redis and verifies the connection
func NewRedisRecommendationCache(ctx context.Context, cfg config.RedisConfig) (*RedisRecommendationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRecommendationCacheWithClient(client, ""), nil
}

// NewRedisRecommendationCacheWithClient creates a cache with an existing Redis client
func NewRedisRecommendationCacheWithClient(client *redis.Client, keyPrefix string) *RedisRecommendationCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisRecommendationCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload and whether it was found
func (c *RedisRecommendationCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

// Set stores a payload with a TTL
func (c *RedisRecommendationCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
// It walks the keyspace with SCAN so Redis is never blocked by KEYS.
func (c *RedisRecommendationCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := escapeGlob(c.keyPrefix+prefix) + "*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks the Redis connection
func (c *RedisRecommendationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisRecommendationCache) Close() error {
	return c.client.Close()
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}

// Ensure RedisRecommendationCache implements RecommendationCache
var _ stylingapp.RecommendationCache = (*RedisRecommendationCache)(nil)
