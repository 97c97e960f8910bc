// Package lifecycle owns tenant provisioning, suspension and deletion.
//
// The Manager is the only writer of the tenant directory. It drives a
// strict state machine (pending → active ⇄ suspended → deleting →
// deleted) and keeps the directory record and the physical schema in
// step: a tenant becomes resolvable only after its schema fully
// exists, and its record reaches deleted only after teardown succeeds.
// Concurrent transitions on the same tenant are serialized with
// optimistic versioning on the record and advisory locks on the DDL.
package lifecycle
