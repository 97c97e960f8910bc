package directory

import (
	"context"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Cache is the read-cache boundary of the directory. Entries are
// whole records, so a cached suspended tenant fails resolution just as
// fast as a cached active one resolves.
type Cache interface {
	Get(ctx context.Context, key string) (tenant.Record, bool)
	Set(ctx context.Context, key string, rec tenant.Record) error
	Delete(ctx context.Context, key string) error
}

// NoOpCache disables caching; every resolution hits the store.
type NoOpCache struct{}

func (NoOpCache) Get(ctx context.Context, key string) (tenant.Record, bool) { return tenant.Record{}, false }
func (NoOpCache) Set(ctx context.Context, key string, rec tenant.Record) error { return nil }
func (NoOpCache) Delete(ctx context.Context, key string) error                  { return nil }

// LRUCache is the default in-process cache. Its TTL is the staleness
// bound: after a status change in another process, this resolver may
// serve the old status for at most the TTL.
type LRUCache struct {
	lru *cache.LRUCache[string, tenant.Record]
}

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: cache.NewLRUCacheWithTTL[string, tenant.Record](capacity, ttl)}
}

// SetClock overrides the expiry time source. Intended for tests.
func (c *LRUCache) SetClock(now func() time.Time) {
	c.lru.SetClock(now)
}

func (c *LRUCache) Get(ctx context.Context, key string) (tenant.Record, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(ctx context.Context, key string, rec tenant.Record) error {
	c.lru.Put(key, rec)
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}
