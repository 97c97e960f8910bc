package directory

import (
	"context"
	"errors"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// ErrVersionConflict is returned by Store.UpdateStatus when the
// record's version moved underneath the caller. Status writes are
// serialized per tenant with optimistic versioning; the loser of a
// race reloads and re-evaluates against the post-state.
var ErrVersionConflict = errors.New("directory: record version conflict")

// ListFilter narrows and pages List results.
type ListFilter struct {
	Status *tenant.Status
	Limit  int
	Offset int
}

// Store is the persistence boundary of the tenant directory. Reads are
// issued by every resolver; mutating methods are reserved for the
// lifecycle manager.
type Store interface {
	// Get returns the record for the given tenant ID, including
	// soft-deleted rows. Absent rows fail with tenant.ErrTenantNotFound.
	Get(ctx context.Context, id string) (tenant.Record, error)

	// Create inserts a new record. A duplicate ID or a schema name
	// already held by a non-deleted record fails.
	Create(ctx context.Context, rec tenant.Record) (tenant.Record, error)

	// UpdateStatus transitions the record's status iff its version
	// still equals expectedVersion, bumping the version. Fails with
	// ErrVersionConflict when the row changed concurrently and
	// tenant.ErrTenantNotFound when it does not exist.
	UpdateStatus(ctx context.Context, id string, target tenant.Status, expectedVersion int64) (tenant.Record, error)

	// UpdateName renames the tenant. Identity and schema are immutable.
	UpdateName(ctx context.Context, id, name string) (tenant.Record, error)

	// List returns records matching the filter ordered by creation time.
	List(ctx context.Context, f ListFilter) ([]tenant.Record, error)

	// Exists reports whether a record with the given ID exists.
	Exists(ctx context.Context, id string) (bool, error)
}
