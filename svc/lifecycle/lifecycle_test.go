package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/svc/directory"
	"github.com/dmitrymomot/tenantkit/svc/lifecycle"
)

// fakeProvisioner records schema operations and can be told to fail.
type fakeProvisioner struct {
	mu            sync.Mutex
	created       []string
	dropped       []string
	createErr     error
	dropErr       error
	onCreateHook  func(schemaName string)
	remainingDrop int // fail DropSchema this many times, then succeed
}

func (p *fakeProvisioner) CreateSchema(ctx context.Context, schemaName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.onCreateHook != nil {
		p.onCreateHook(schemaName)
	}
	if p.createErr != nil {
		return p.createErr
	}
	p.created = append(p.created, schemaName)
	return nil
}

func (p *fakeProvisioner) DropSchema(ctx context.Context, schemaName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remainingDrop > 0 {
		p.remainingDrop--
		return p.dropErr
	}
	p.dropped = append(p.dropped, schemaName)
	return nil
}

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("happy path activates the tenant", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		prov := &fakeProvisioner{}
		mgr := lifecycle.New(store, prov)

		rec, err := mgr.Create(ctx, "Acme Corp")
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusActive, rec.Status)
		assert.Equal(t, "t_"+rec.ID, rec.SchemaName)
		assert.Contains(t, rec.ID, "acme_corp")
		require.Len(t, prov.created, 1)
		assert.Equal(t, rec.SchemaName, prov.created[0])
	})

	t.Run("tenant never resolvable before activation", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		dir := directory.New(store, directory.WithCache(directory.NoOpCache{}))

		prov := &fakeProvisioner{}
		var resolveErr error
		prov.onCreateHook = func(schemaName string) {
			// Mid-provisioning the record exists but must not resolve.
			_, resolveErr = dir.Resolve(ctx, schemaName[len("t_"):])
		}

		mgr := lifecycle.New(store, prov, lifecycle.WithInvalidator(dir))
		rec, err := mgr.Create(ctx, "acme")
		require.NoError(t, err)
		assert.ErrorIs(t, resolveErr, tenant.ErrTenantInactive)

		_, err = dir.Resolve(ctx, rec.ID)
		assert.NoError(t, err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()

		mgr := lifecycle.New(directory.NewMemoryStore(), &fakeProvisioner{},
			lifecycle.WithIDAllocator(func(name string) string { return "" }))

		_, err := mgr.Create(ctx, "!!!")
		assert.ErrorIs(t, err, lifecycle.ErrInvalidName)
	})

	t.Run("provisioning failure marks the record deleted", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		prov := &fakeProvisioner{createErr: errors.New("disk full")}
		mgr := lifecycle.New(store, prov,
			lifecycle.WithIDAllocator(func(string) string { return "acme_fail01" }))

		_, err := mgr.Create(ctx, "acme")
		require.ErrorIs(t, err, tenant.ErrProvisioningFailed)

		rec, err := store.Get(ctx, "acme_fail01")
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleted, rec.Status)
	})

	t.Run("retry after failure allocates a fresh identifier", func(t *testing.T) {
		t.Parallel()

		store := directory.NewMemoryStore()
		prov := &fakeProvisioner{createErr: errors.New("disk full")}
		mgr := lifecycle.New(store, prov)

		_, err := mgr.Create(ctx, "acme")
		require.ErrorIs(t, err, tenant.ErrProvisioningFailed)

		prov.mu.Lock()
		prov.createErr = nil
		prov.mu.Unlock()

		rec, err := mgr.Create(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusActive, rec.Status)

		// The dead identifier stays dead.
		recs, err := store.List(ctx, directory.ListFilter{})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.NotEqual(t, recs[0].ID, recs[1].ID)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newActive := func(t *testing.T) (*lifecycle.Manager, tenant.Record) {
		t.Helper()
		store := directory.NewMemoryStore()
		mgr := lifecycle.New(store, &fakeProvisioner{})
		rec, err := mgr.Create(ctx, "acme")
		require.NoError(t, err)
		return mgr, rec
	}

	t.Run("suspend and reactivate", func(t *testing.T) {
		t.Parallel()

		mgr, rec := newActive(t)

		got, err := mgr.UpdateStatus(ctx, rec.ID, tenant.StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusSuspended, got.Status)

		got, err = mgr.UpdateStatus(ctx, rec.ID, tenant.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusActive, got.Status)
	})

	t.Run("same status is an idempotent no-op", func(t *testing.T) {
		t.Parallel()

		mgr, rec := newActive(t)

		first, err := mgr.UpdateStatus(ctx, rec.ID, tenant.StatusSuspended)
		require.NoError(t, err)

		second, err := mgr.UpdateStatus(ctx, rec.ID, tenant.StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, first.Version, second.Version)
	})

	t.Run("pending and deleted are not legal targets", func(t *testing.T) {
		t.Parallel()

		mgr, rec := newActive(t)

		_, err := mgr.UpdateStatus(ctx, rec.ID, tenant.StatusPending)
		assert.True(t, tenant.IsIllegalTransitionError(err))

		_, err = mgr.UpdateStatus(ctx, rec.ID, tenant.StatusDeleted)
		assert.True(t, tenant.IsIllegalTransitionError(err))
	})

	t.Run("transitions out of deleted rejected", func(t *testing.T) {
		t.Parallel()

		mgr, rec := newActive(t)
		_, err := mgr.Delete(ctx, rec.ID, false)
		require.NoError(t, err)

		_, err = mgr.UpdateStatus(ctx, rec.ID, tenant.StatusActive)
		assert.True(t, tenant.IsIllegalTransitionError(err))
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		mgr := lifecycle.New(directory.NewMemoryStore(), &fakeProvisioner{})
		_, err := mgr.UpdateStatus(ctx, "ghost", tenant.StatusSuspended)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("version conflict loser re-evaluates", func(t *testing.T) {
		t.Parallel()

		store := &conflictStore{Store: directory.NewMemoryStore(), conflicts: 1}
		mgr := lifecycle.New(store, &fakeProvisioner{})
		rec, err := mgr.Create(ctx, "acme")
		require.NoError(t, err)

		store.arm()
		got, err := mgr.UpdateStatus(ctx, rec.ID, tenant.StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusSuspended, got.Status)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newManager := func(t *testing.T, prov *fakeProvisioner) (*lifecycle.Manager, *directory.MemoryStore, tenant.Record) {
		t.Helper()
		store := directory.NewMemoryStore()
		mgr := lifecycle.New(store, prov)
		rec, err := mgr.Create(ctx, "acme")
		require.NoError(t, err)
		return mgr, store, rec
	}

	t.Run("deletes an active tenant and drops its schema", func(t *testing.T) {
		t.Parallel()

		prov := &fakeProvisioner{}
		mgr, _, rec := newManager(t, prov)

		got, err := mgr.Delete(ctx, rec.ID, true)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleted, got.Status)
		assert.Contains(t, prov.dropped, rec.SchemaName)
	})

	t.Run("keeps the schema when dropSchema is false", func(t *testing.T) {
		t.Parallel()

		prov := &fakeProvisioner{}
		mgr, _, rec := newManager(t, prov)

		got, err := mgr.Delete(ctx, rec.ID, false)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleted, got.Status)
		assert.Empty(t, prov.dropped)
	})

	t.Run("failed drop stays deleting and is retryable", func(t *testing.T) {
		t.Parallel()

		prov := &fakeProvisioner{dropErr: errors.New("schema busy"), remainingDrop: 1}
		mgr, store, rec := newManager(t, prov)

		got, err := mgr.Delete(ctx, rec.ID, true)
		require.Error(t, err)
		assert.Equal(t, tenant.StatusDeleting, got.Status)

		stored, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleting, stored.Status)

		// Second attempt completes the teardown.
		got, err = mgr.Delete(ctx, rec.ID, true)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleted, got.Status)
	})

	t.Run("deleting a deleted tenant rejected", func(t *testing.T) {
		t.Parallel()

		mgr, _, rec := newManager(t, &fakeProvisioner{})
		_, err := mgr.Delete(ctx, rec.ID, false)
		require.NoError(t, err)

		_, err = mgr.Delete(ctx, rec.ID, false)
		assert.True(t, tenant.IsIllegalTransitionError(err))
	})

	t.Run("record survives deletion for audit", func(t *testing.T) {
		t.Parallel()

		mgr, store, rec := newManager(t, &fakeProvisioner{})
		_, err := mgr.Delete(ctx, rec.ID, true)
		require.NoError(t, err)

		stored, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, tenant.StatusDeleted, stored.Status)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := directory.NewMemoryStore()
	mgr := lifecycle.New(store, &fakeProvisioner{})
	rec, err := mgr.Create(ctx, "acme")
	require.NoError(t, err)

	renamed, err := mgr.Update(ctx, rec.ID, "Acme Inc")
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", renamed.Name)
	assert.Equal(t, rec.SchemaName, renamed.SchemaName)

	_, err = mgr.Update(ctx, rec.ID, "")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidName)
}

// conflictStore injects version conflicts into UpdateStatus once armed,
// bumping the underlying version so the retry sees fresh state.
type conflictStore struct {
	directory.Store
	mu        sync.Mutex
	armed     bool
	conflicts int
}

func (s *conflictStore) arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = true
}

func (s *conflictStore) UpdateStatus(ctx context.Context, id string, target tenant.Status, expectedVersion int64) (tenant.Record, error) {
	s.mu.Lock()
	inject := s.armed && s.conflicts > 0
	if inject {
		s.conflicts--
	}
	s.mu.Unlock()

	if inject {
		return tenant.Record{}, directory.ErrVersionConflict
	}
	return s.Store.UpdateStatus(ctx, id, target, expectedVersion)
}
