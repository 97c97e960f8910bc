// Package schemarouter directs tenant-scoped SQL to the right schema.
//
// Tenant data lives in one schema per tenant inside a shared database.
// The router reads the ambient tenant context on every single operation
// and pins the connection's search_path to that tenant's schema for the
// duration of the operation only. Without an established tenant context
// an operation fails with tenant.ErrMissingTenantContext — failing is
// always preferred over routing to a default schema.
package schemarouter
