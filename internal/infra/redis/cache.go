// Package redis implements the result cache on Redis with TTL expiry and
// requester-scoped invalidation.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

// Cache implements domain.ResultCache. Keys embed the requester id so a
// scoped invalidation can sweep one requester's entries without touching the
// rest: {prefix}:search:{requesterID}:{fingerprint}.
type Cache struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	ttl       time.Duration
}

// entry is the stored value: the result set plus its write timestamp. Get
// checks the age itself, so correctness does not depend on Redis eviction
// timing.
type entry struct {
	Result   *domain.SearchResult `json:"result"`
	CachedAt time.Time            `json:"cached_at"`
}

// NewCache creates a Redis-backed result cache. keyPrefix namespaces all
// keys; ttl bounds the freshness of every entry.
func NewCache(client *redis.Client, logger *zap.Logger, keyPrefix string, ttl time.Duration) *Cache {
	return &Cache{
		client:    client,
		logger:    logger,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get retrieves the cached result for the filter. Returns (nil, nil) on
// miss; expired entries count as misses even when still present in Redis.
func (c *Cache) Get(ctx context.Context, f *domain.SearchFilter) (*domain.SearchResult, error) {
	key := c.buildKey(f)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewCacheError(fmt.Errorf("cache get: %w", err))
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, domain.NewCacheError(fmt.Errorf("cache decode: %w", err))
	}

	if time.Since(e.CachedAt) > c.ttl {
		c.logger.Debug("cache entry stale, treating as miss", zap.String("key", key))
		return nil, nil
	}

	c.logger.Debug("cache hit",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	return e.Result, nil
}

// Set stores a freshly computed result with the configured TTL.
func (c *Cache) Set(ctx context.Context, f *domain.SearchFilter, result *domain.SearchResult) error {
	key := c.buildKey(f)

	data, err := json.Marshal(entry{Result: result, CachedAt: time.Now().UTC()})
	if err != nil {
		return domain.NewCacheError(fmt.Errorf("cache encode: %w", err))
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return domain.NewCacheError(fmt.Errorf("cache set: %w", err))
	}

	c.logger.Debug("cache set",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", c.ttl),
	)

	return nil
}

// InvalidateRequester evicts every entry derived from a filter with the
// given requester id.
func (c *Cache) InvalidateRequester(ctx context.Context, requesterID int64) error {
	pattern := fmt.Sprintf("%s:search:%d:*", c.keyPrefix, requesterID)
	return c.deleteByPattern(ctx, pattern)
}

// Flush evicts every cached result.
func (c *Cache) Flush(ctx context.Context) error {
	return c.deleteByPattern(ctx, c.keyPrefix+":search:*")
}

// deleteByPattern removes all keys matching the pattern. Uses SCAN, which is
// safe for production use (non-blocking).
func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return domain.NewCacheError(fmt.Errorf("cache scan %q: %w", pattern, err))
	}

	if len(keys) == 0 {
		c.logger.Debug("cache invalidate: no keys found", zap.String("pattern", pattern))
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return domain.NewCacheError(fmt.Errorf("cache delete: %w", err))
	}

	c.logger.Info("cache invalidated",
		zap.String("pattern", pattern),
		zap.Int("key_count", len(keys)),
	)

	return nil
}

func (c *Cache) buildKey(f *domain.SearchFilter) string {
	return fmt.Sprintf("%s:search:%d:%s", c.keyPrefix, f.RequesterID, f.Fingerprint())
}
