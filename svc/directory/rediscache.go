package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const redisKeyPrefix = "tenantkit:directory:"

// RedisCache shares the directory cache across resolver processes.
// Unlike the in-process LRU, a Delete here is visible fleet-wide, so
// suspension takes effect everywhere as soon as the lifecycle manager
// invalidates — the TTL only covers processes that raced the delete.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (tenant.Record, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		// Treat any cache failure as a miss; the store is authoritative.
		return tenant.Record{}, false
	}
	var rec tenant.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return tenant.Record{}, false
	}
	return rec, true
}

func (c *RedisCache) Set(ctx context.Context, key string, rec tenant.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, redisKeyPrefix+key).Err()
}
