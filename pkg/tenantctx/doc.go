// Package tenantctx carries the request-scoped tenant binding through
// the call chain.
//
// The carrier rides on context.Context, which is the one value Go code
// already threads through every boundary — HTTP handlers, database
// calls, worker pools. That makes propagation explicit and independent
// of goroutine identity: any subtask created with the request's
// context inherits the tenant binding, and a context without one
// reliably reads as "no tenant".
//
// Establish enforces the nesting contract: re-establishing the same
// tenant inside an existing scope is fine (internal calls), while a
// different tenant fails with tenant.ErrTenantContextConflict so no
// request can ever straddle two schemas.
package tenantctx
