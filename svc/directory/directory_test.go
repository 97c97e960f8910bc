package directory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/svc/directory"
)

func seedTenant(t *testing.T, store *directory.MemoryStore, id string, status tenant.Status) tenant.Record {
	t.Helper()

	rec, err := store.Create(context.Background(), tenant.Record{
		ID:         id,
		Name:       id,
		SchemaName: "t_" + id,
		Status:     tenant.StatusPending,
	})
	require.NoError(t, err)

	if status == tenant.StatusPending {
		return rec
	}
	version := rec.Version
	for _, step := range statusPath(status) {
		rec, err = store.UpdateStatus(context.Background(), id, step, version)
		require.NoError(t, err)
		version = rec.Version
	}
	return rec
}

// statusPath returns the legal transition chain from pending to target.
func statusPath(target tenant.Status) []tenant.Status {
	switch target {
	case tenant.StatusActive:
		return []tenant.Status{tenant.StatusActive}
	case tenant.StatusSuspended:
		return []tenant.Status{tenant.StatusActive, tenant.StatusSuspended}
	case tenant.StatusDeleting:
		return []tenant.Status{tenant.StatusActive, tenant.StatusDeleting}
	case tenant.StatusDeleted:
		return []tenant.Status{tenant.StatusActive, tenant.StatusDeleting, tenant.StatusDeleted}
	default:
		return nil
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active tenant resolves", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		seedTenant(t, store, "acme", tenant.StatusActive)
		dir := directory.New(store)

		rec, err := dir.Resolve(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "t_acme", rec.SchemaName)
		assert.Equal(t, tenant.StatusActive, rec.Status)
	})

	t.Run("unknown tenant fails", func(t *testing.T) {
		t.Parallel()

		dir := directory.New(directory.NewMemoryStore())

		_, err := dir.Resolve(ctx, "nobody")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("empty tenant id fails", func(t *testing.T) {
		t.Parallel()

		dir := directory.New(directory.NewMemoryStore())

		_, err := dir.Resolve(ctx, "")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("inactive statuses fail", func(t *testing.T) {
		t.Parallel()

		for _, status := range []tenant.Status{
			tenant.StatusPending,
			tenant.StatusSuspended,
			tenant.StatusDeleting,
			tenant.StatusDeleted,
		} {
			store := directory.NewMemoryStore()
			seedTenant(t, store, "acme", status)
			dir := directory.New(store)

			_, err := dir.Resolve(ctx, "acme")
			assert.ErrorIs(t, err, tenant.ErrTenantInactive, "status %s", status)
		}
	})
}

func TestResolveCaching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cached record served within the staleness bound", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		rec := seedTenant(t, store, "acme", tenant.StatusActive)
		dir := directory.New(store)

		_, err := dir.Resolve(ctx, "acme")
		require.NoError(t, err)

		// Suspend behind the cache's back, as another process would.
		_, err = store.UpdateStatus(ctx, "acme", tenant.StatusSuspended, rec.Version)
		require.NoError(t, err)

		// The stale active record still resolves until the TTL elapses.
		_, err = dir.Resolve(ctx, "acme")
		assert.NoError(t, err)
	})

	t.Run("suspension visible after the ttl", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		cache := directory.NewLRUCache(16, 30*time.Second)
		cache.SetClock(func() time.Time { return now })

		store := directory.NewMemoryStore()
		rec := seedTenant(t, store, "acme", tenant.StatusActive)
		dir := directory.New(store, directory.WithCache(cache))

		_, err := dir.Resolve(ctx, "acme")
		require.NoError(t, err)

		_, err = store.UpdateStatus(ctx, "acme", tenant.StatusSuspended, rec.Version)
		require.NoError(t, err)

		now = now.Add(31 * time.Second)
		_, err = dir.Resolve(ctx, "acme")
		assert.ErrorIs(t, err, tenant.ErrTenantInactive)
	})

	t.Run("invalidation takes effect immediately", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		rec := seedTenant(t, store, "acme", tenant.StatusActive)
		dir := directory.New(store)

		_, err := dir.Resolve(ctx, "acme")
		require.NoError(t, err)

		_, err = store.UpdateStatus(ctx, "acme", tenant.StatusSuspended, rec.Version)
		require.NoError(t, err)
		dir.Invalidate(ctx, "acme")

		_, err = dir.Resolve(ctx, "acme")
		assert.ErrorIs(t, err, tenant.ErrTenantInactive)
	})

	t.Run("negative lookups are not cached", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		dir := directory.New(store)

		_, err := dir.Resolve(ctx, "late")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)

		seedTenant(t, store, "late", tenant.StatusActive)

		_, err = dir.Resolve(ctx, "late")
		assert.NoError(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("version conflict on concurrent update", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		rec := seedTenant(t, store, "acme", tenant.StatusActive)

		_, err := store.UpdateStatus(ctx, "acme", tenant.StatusSuspended, rec.Version)
		require.NoError(t, err)

		// Second writer still holds the old version.
		_, err = store.UpdateStatus(ctx, "acme", tenant.StatusDeleting, rec.Version)
		assert.ErrorIs(t, err, directory.ErrVersionConflict)
	})

	t.Run("schema name unique among live records", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		seedTenant(t, store, "acme", tenant.StatusActive)

		_, err := store.Create(ctx, tenant.Record{ID: "acme2", SchemaName: "t_acme", Status: tenant.StatusPending})
		assert.Error(t, err)
	})

	t.Run("deleted records free their schema name", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		seedTenant(t, store, "acme", tenant.StatusDeleted)

		_, err := store.Create(ctx, tenant.Record{ID: "acme2", SchemaName: "t_acme", Status: tenant.StatusPending})
		assert.NoError(t, err)
	})

	t.Run("list filters by status", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		seedTenant(t, store, "a", tenant.StatusActive)
		seedTenant(t, store, "b", tenant.StatusSuspended)
		seedTenant(t, store, "c", tenant.StatusActive)

		active := tenant.StatusActive
		recs, err := store.List(ctx, directory.ListFilter{Status: &active})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		for _, rec := range recs {
			assert.Equal(t, tenant.StatusActive, rec.Status)
		}
	})
}
