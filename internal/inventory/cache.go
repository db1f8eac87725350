package inventory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "inventory:search:ver"
	cachePrefix     = "inventory:search:"
)

// Cache stores search results in Redis. Invalidation bumps a version counter
// embedded in every key, so stale entries simply age out through the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache instance.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// Key derives a deterministic cache key for the filter at the current
// cache version.
func (c *Cache) Key(ctx context.Context, filter SearchFilter) (string, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	raw, err := json.Marshal(struct {
		SearchFilter
		MinCarat, MaxCarat, MinPrice, MaxPrice string
	}{
		SearchFilter: filter,
		MinCarat:     filter.MinCarat.String(),
		MaxCarat:     filter.MaxCarat.String(),
		MinPrice:     filter.MinPrice.String(),
		MaxPrice:     filter.MaxPrice.String(),
	})
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s%d:%s", cachePrefix, ver, hex.EncodeToString(sum[:])), nil
}

// Get returns the cached result for key, or (nil, false) on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]Diamond, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stones []Diamond
	if err := json.Unmarshal(raw, &stones); err != nil {
		return nil, false, nil
	}
	return stones, true, nil
}

// Set stores the result under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, stones []Diamond) error {
	raw, err := json.Marshal(stones)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate makes all existing search entries unreachable.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
