package tenant

import (
	"time"
)

// Record is the authoritative directory entry for a single tenant.
// ID and SchemaName are assigned once at provisioning time and never
// change afterwards; all mutations go through guarded status
// transitions. Records are soft-deleted: a deleted tenant stays in the
// directory with StatusDeleted so its history remains auditable, even
// after the physical schema has been dropped.
type Record struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	SchemaName string    `json:"schema_name" db:"schema_name"`
	Status     Status    `json:"status" db:"status"`
	Version    int64     `json:"version" db:"version"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the tenant may be resolved for new requests.
func (r Record) IsActive() bool {
	return r.Status == StatusActive
}
