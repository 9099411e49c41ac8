package cache

import (
	"context"
	"disposal-route-service/internal/domain"
	"disposal-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanKeyPrefix = "disposal:scan:"

// RedisScanCache is a Redis-backed cache for connected-storage scan results.
// Entries expire after TTL; a zero TTL keeps them until evicted.
type RedisScanCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisScanCache(client *redis.Client, ttl time.Duration) *RedisScanCache {
	return &RedisScanCache{Client: client, TTL: ttl}
}

// Fetch the cached storage ids for a scan key.
func (c *RedisScanCache) Get(ctx context.Context, key string) (_ []domain.StorageID, _ bool, err error) {
	defer obs.Time(ctx, "scan.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("scan cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get scan cache: key must not be empty")
	}

	raw, err := c.Client.Get(ctx, scanKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get scan cache key=%q: %w", key, err)
	}

	var ids []domain.StorageID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("get scan cache key=%q: decode: %w", key, err)
	}
	return ids, true, nil
}

// Store the storage ids of one scan. An empty result is cached too.
func (c *RedisScanCache) Put(ctx context.Context, key string, ids []domain.StorageID) error {
	if c.Client == nil {
		return errors.New("scan cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("put scan cache: key must not be empty")
	}
	if ids == nil {
		ids = []domain.StorageID{}
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("put scan cache key=%q: encode: %w", key, err)
	}
	if err := c.Client.Set(ctx, scanKeyPrefix+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put scan cache key=%q: %w", key, err)
	}
	return nil
}
