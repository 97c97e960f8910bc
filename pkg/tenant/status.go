package tenant

import "fmt"

// Status is the lifecycle state of a tenant. It is a single
// finite-state field; legal transitions are defined by the transition
// table below and enforced by the lifecycle manager.
type Status string

const (
	// StatusPending marks a tenant whose directory row exists but whose
	// schema has not been provisioned yet. Pending is the only initial
	// state and is never observable after provisioning returns.
	StatusPending Status = "pending"
	// StatusActive marks a fully provisioned, resolvable tenant.
	StatusActive Status = "active"
	// StatusSuspended blocks new resolutions without touching the schema.
	StatusSuspended Status = "suspended"
	// StatusDeleting marks a tenant whose teardown has started but not
	// completed. A failed schema drop leaves the record here, retryable.
	StatusDeleting Status = "deleting"
	// StatusDeleted is terminal. The row is kept for audit history.
	StatusDeleted Status = "deleted"
)

// transitions is the authoritative transition table:
// PENDING → ACTIVE (provisioning succeeded) or DELETED (it failed),
// ACTIVE ↔ SUSPENDED, {ACTIVE,SUSPENDED} → DELETING → DELETED.
var transitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusDeleted},
	StatusActive:    {StatusSuspended, StatusDeleting},
	StatusSuspended: {StatusActive, StatusDeleting},
	StatusDeleting:  {StatusDeleted},
	StatusDeleted:   {},
}

// IsValid reports whether s is one of the defined lifecycle states.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDeleted
}

// CanTransitionTo reports whether the transition s → target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ParseStatus converts a stored string into a Status, rejecting
// anything outside the defined state set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("tenant: unknown status %q", s)
	}
	return st, nil
}
