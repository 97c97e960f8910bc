package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned when no directory record exists for
	// the requested tenant identifier.
	ErrTenantNotFound = errors.New("tenant: not found")

	// ErrTenantInactive is returned when a record exists but its status
	// forbids resolution (suspended, deleting or deleted).
	ErrTenantInactive = errors.New("tenant: not active")

	// ErrMissingTenantContext is returned by data-access code invoked
	// without an established tenant context. It signals a programming
	// contract violation and is fatal to the request; nothing ever
	// falls back to a default schema.
	ErrMissingTenantContext = errors.New("tenant: no tenant context established")

	// ErrTenantContextConflict is returned when a nested context
	// establishment names a different tenant than the ambient one.
	ErrTenantContextConflict = errors.New("tenant: context already established for a different tenant")

	// ErrProvisioningFailed wraps schema provisioning failures during
	// tenant creation. The record is left in StatusDeleted and the
	// failed identifier is never reused.
	ErrProvisioningFailed = errors.New("tenant: schema provisioning failed")
)

// IllegalTransitionError reports a status change rejected by the
// transition table.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("tenant: illegal transition from %q to %q", e.From, e.To)
}

func NewIllegalTransitionError(from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}

func IsIllegalTransitionError(err error) bool {
	var e *IllegalTransitionError
	return errors.As(err, &e)
}
