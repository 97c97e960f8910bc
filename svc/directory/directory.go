package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DefaultCacheTTL is the default staleness bound for cached directory
// records: after a status change elsewhere in the fleet, a resolver
// serves the old status for at most this long.
const DefaultCacheTTL = 30 * time.Second

// DefaultCacheSize bounds the in-process record cache. Tenant sets are
// small relative to request volume, so a few thousand entries cover
// realistic fleets.
const DefaultCacheSize = 4096

type Config struct {
	CacheTTL  time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"30s"`  // CacheTTL is the staleness bound for cached records.
	CacheSize int           `env:"DIRECTORY_CACHE_SIZE" envDefault:"4096"` // CacheSize is the in-process cache capacity.
}

// Directory resolves tenant identifiers to directory records, caching
// reads against the authoritative store.
type Directory struct {
	store Store
	cache Cache
	log   *slog.Logger
}

// Option configures the Directory.
type Option func(*Directory)

// WithCache replaces the default in-process LRU cache, e.g. with
// NewRedisCache for fleet-wide invalidation, or NoOpCache for tests.
func WithCache(c Cache) Option {
	return func(d *Directory) {
		if c != nil {
			d.cache = c
		}
	}
}

// WithLogger supplies a logger; a nil logger keeps the default.
func WithLogger(log *slog.Logger) Option {
	return func(d *Directory) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a Directory over the given store with a TTL-bounded
// in-process cache by default.
func New(store Store, opts ...Option) *Directory {
	d := &Directory{
		store: store,
		cache: NewLRUCache(DefaultCacheSize, DefaultCacheTTL),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromConfig creates a Directory with cache parameters from cfg.
func NewFromConfig(store Store, cfg Config, opts ...Option) *Directory {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	base := []Option{WithCache(NewLRUCache(size, ttl))}
	return New(store, append(base, opts...)...)
}

// Resolve returns the record for tenantID when, and only when, the
// tenant is active. Absent records fail with tenant.ErrTenantNotFound;
// suspended, deleting and deleted records fail with
// tenant.ErrTenantInactive. Records of any status are cached (within
// the staleness bound) — negative lookups are not.
func (d *Directory) Resolve(ctx context.Context, tenantID string) (tenant.Record, error) {
	if tenantID == "" {
		return tenant.Record{}, tenant.ErrTenantNotFound
	}

	rec, ok := d.cache.Get(ctx, tenantID)
	if !ok {
		var err error
		rec, err = d.store.Get(ctx, tenantID)
		if err != nil {
			return tenant.Record{}, err
		}
		if err := d.cache.Set(ctx, tenantID, rec); err != nil {
			d.log.WarnContext(ctx, "failed to cache tenant record", "tenant_id", tenantID, "error", err)
		}
	}

	switch rec.Status {
	case tenant.StatusActive:
		return rec, nil
	case tenant.StatusSuspended, tenant.StatusDeleting, tenant.StatusDeleted:
		return tenant.Record{}, tenant.ErrTenantInactive
	default:
		// Pending records are not observable through the admin surface,
		// but a crashed provisioning run may leave one behind.
		return tenant.Record{}, tenant.ErrTenantInactive
	}
}

// Invalidate drops the cached record for tenantID. The lifecycle
// manager calls this after every status write so local resolutions see
// the change immediately rather than after the staleness bound.
func (d *Directory) Invalidate(ctx context.Context, tenantID string) {
	if err := d.cache.Delete(ctx, tenantID); err != nil {
		d.log.WarnContext(ctx, "failed to invalidate tenant record", "tenant_id", tenantID, "error", err)
	}
}

// Store exposes the underlying store for the lifecycle manager, which
// is the only component allowed to mutate directory state.
func (d *Directory) Store() Store {
	return d.store
}
