package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/slug"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/svc/directory"
)

// ErrInvalidName is returned when a tenant display name yields an
// empty identifier after slugification.
var ErrInvalidName = errors.New("lifecycle: tenant name yields no usable identifier")

const (
	schemaPrefix   = "t_"
	idSuffixLength = 6
	idMaxLength    = 48
)

// Invalidator is the directory's cache invalidation hook. Satisfied by
// *directory.Directory.
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(ctx context.Context, tenantID string) {}

// Manager drives the tenant lifecycle state machine and its physical
// side effects. It is the only writer of the tenant directory.
type Manager struct {
	store   directory.Store
	prov    Provisioner
	inval   Invalidator
	log     *slog.Logger
	allocID func(name string) string
}

// Option configures the Manager.
type Option func(*Manager)

// WithInvalidator wires directory cache invalidation so status changes
// take local effect immediately instead of after the staleness bound.
func WithInvalidator(inv Invalidator) Option {
	return func(m *Manager) {
		if inv != nil {
			m.inval = inv
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithIDAllocator overrides tenant ID allocation. Intended for tests
// that need deterministic identifiers.
func WithIDAllocator(alloc func(name string) string) Option {
	return func(m *Manager) {
		if alloc != nil {
			m.allocID = alloc
		}
	}
}

// New creates a lifecycle Manager over the given directory store and
// schema provisioner.
func New(store directory.Store, prov Provisioner, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		prov:  prov,
		inval: noopInvalidator{},
		log:   slog.Default(),
		allocID: func(name string) string {
			// A fresh random suffix per attempt: identifiers of failed
			// provisioning runs are never reused.
			return slug.Make(name, slug.Separator("_"), slug.WithSuffix(idSuffixLength), slug.MaxLength(idMaxLength))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create provisions a new tenant: it allocates an identifier, derives
// the schema name, writes a pending directory record, physically
// creates the schema with its seed objects, and activates the record.
// On provisioning failure the record is marked deleted — the caller
// may retry with the same name and will get a distinct identifier.
// A record is never observably pending after Create returns.
func (m *Manager) Create(ctx context.Context, name string) (tenant.Record, error) {
	id := m.allocID(name)
	if id == "" {
		return tenant.Record{}, ErrInvalidName
	}
	schemaName := schemaPrefix + id

	rec, err := m.store.Create(ctx, tenant.Record{
		ID:         id,
		Name:       name,
		SchemaName: schemaName,
		Status:     tenant.StatusPending,
	})
	if err != nil {
		return tenant.Record{}, err
	}

	if err := m.prov.CreateSchema(ctx, schemaName); err != nil {
		m.log.ErrorContext(ctx, "tenant schema provisioning failed",
			"tenant_id", id, "schema", schemaName, "error", err)
		// Never leave a resolvable half-provisioned tenant behind.
		if _, mErr := m.store.UpdateStatus(ctx, id, tenant.StatusDeleted, rec.Version); mErr != nil {
			m.log.ErrorContext(ctx, "failed to mark failed tenant as deleted",
				"tenant_id", id, "error", mErr)
		}
		if dErr := m.prov.DropSchema(ctx, schemaName); dErr != nil {
			m.log.WarnContext(ctx, "failed to clean up partially provisioned schema",
				"tenant_id", id, "schema", schemaName, "error", dErr)
		}
		m.inval.Invalidate(ctx, id)
		return tenant.Record{}, errors.Join(tenant.ErrProvisioningFailed, err)
	}

	active, err := m.store.UpdateStatus(ctx, id, tenant.StatusActive, rec.Version)
	if err != nil {
		return tenant.Record{}, fmt.Errorf("lifecycle: activate tenant %q: %w", id, err)
	}
	m.inval.Invalidate(ctx, id)

	m.log.InfoContext(ctx, "tenant provisioned",
		"tenant_id", id, "schema", schemaName)
	return active, nil
}

// UpdateStatus applies a guarded status transition. Legal targets are
// active, suspended and deleting; setting the current status on an
// active or suspended tenant is an idempotent no-op returning the
// unchanged record. Concurrent writers are serialized by optimistic
// versioning: the loser re-evaluates once against the post-state and
// either succeeds idempotently or fails with IllegalTransitionError.
func (m *Manager) UpdateStatus(ctx context.Context, id string, target tenant.Status) (tenant.Record, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return tenant.Record{}, err
	}

	// Deletion completes only through Delete; pending is entry-only.
	if target == tenant.StatusPending || target == tenant.StatusDeleted {
		return tenant.Record{}, tenant.NewIllegalTransitionError(rec.Status, target)
	}

	updated, err := m.transition(ctx, rec, target)
	if errors.Is(err, directory.ErrVersionConflict) {
		rec, err = m.store.Get(ctx, id)
		if err != nil {
			return tenant.Record{}, err
		}
		updated, err = m.transition(ctx, rec, target)
	}
	if err != nil {
		return tenant.Record{}, err
	}

	m.inval.Invalidate(ctx, id)
	return updated, nil
}

// transition performs one CAS attempt of rec → target, treating
// target == current as a no-op for active and suspended tenants.
func (m *Manager) transition(ctx context.Context, rec tenant.Record, target tenant.Status) (tenant.Record, error) {
	if rec.Status == target &&
		(target == tenant.StatusActive || target == tenant.StatusSuspended) {
		return rec, nil
	}
	if !rec.Status.CanTransitionTo(target) {
		return tenant.Record{}, tenant.NewIllegalTransitionError(rec.Status, target)
	}
	return m.store.UpdateStatus(ctx, rec.ID, target, rec.Version)
}

// Delete tears a tenant down: the record moves to deleting first, the
// physical schema is optionally dropped, and only then does the record
// reach deleted. A failed schema drop leaves the record in deleting;
// calling Delete again retries the drop without repeating the first
// transition. The row itself is never removed — deleted tenants stay
// in the directory for audit history.
func (m *Manager) Delete(ctx context.Context, id string, dropSchema bool) (tenant.Record, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return tenant.Record{}, err
	}

	switch rec.Status {
	case tenant.StatusDeleting:
		// Retry of a previously failed teardown; transition already done.
	case tenant.StatusActive, tenant.StatusSuspended:
		rec, err = m.store.UpdateStatus(ctx, id, tenant.StatusDeleting, rec.Version)
		if errors.Is(err, directory.ErrVersionConflict) {
			rec, err = m.store.Get(ctx, id)
			if err != nil {
				return tenant.Record{}, err
			}
			if rec.Status != tenant.StatusDeleting {
				if !rec.Status.CanTransitionTo(tenant.StatusDeleting) {
					return tenant.Record{}, tenant.NewIllegalTransitionError(rec.Status, tenant.StatusDeleting)
				}
				rec, err = m.store.UpdateStatus(ctx, id, tenant.StatusDeleting, rec.Version)
			} else {
				err = nil
			}
		}
		if err != nil {
			return tenant.Record{}, err
		}
		m.inval.Invalidate(ctx, id)
	default:
		return tenant.Record{}, tenant.NewIllegalTransitionError(rec.Status, tenant.StatusDeleting)
	}

	if dropSchema {
		if err := m.prov.DropSchema(ctx, rec.SchemaName); err != nil {
			m.log.ErrorContext(ctx, "tenant schema drop failed, record stays deleting",
				"tenant_id", id, "schema", rec.SchemaName, "error", err)
			// Do not claim a deletion that did not happen.
			return rec, fmt.Errorf("lifecycle: drop schema for tenant %q: %w", id, err)
		}
	}

	deleted, err := m.store.UpdateStatus(ctx, id, tenant.StatusDeleted, rec.Version)
	if err != nil {
		return tenant.Record{}, fmt.Errorf("lifecycle: finalize deletion of tenant %q: %w", id, err)
	}
	m.inval.Invalidate(ctx, id)

	m.log.InfoContext(ctx, "tenant deleted",
		"tenant_id", id, "schema_dropped", dropSchema)
	return deleted, nil
}

// Update renames a tenant. Identity and schema name are immutable.
func (m *Manager) Update(ctx context.Context, id, name string) (tenant.Record, error) {
	if name == "" {
		return tenant.Record{}, ErrInvalidName
	}
	return m.store.UpdateName(ctx, id, name)
}

// Get returns the directory record, including soft-deleted ones.
func (m *Manager) Get(ctx context.Context, id string) (tenant.Record, error) {
	return m.store.Get(ctx, id)
}

// Exists reports whether a record with the given ID exists.
func (m *Manager) Exists(ctx context.Context, id string) (bool, error) {
	return m.store.Exists(ctx, id)
}

// List returns directory records matching the filter.
func (m *Manager) List(ctx context.Context, f directory.ListFilter) ([]tenant.Record, error) {
	return m.store.List(ctx, f)
}
