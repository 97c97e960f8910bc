// Package tenant defines the core tenancy data model shared by every
// component of the toolkit: the directory Record, the lifecycle Status
// enum with its transition table, and the tenancy error taxonomy.
//
// The package is deliberately free of storage, HTTP and context
// concerns so that both the edge (gateway, directory) and the data
// layer (schema router, lifecycle manager) can depend on it without
// pulling in each other's stacks.
package tenant
