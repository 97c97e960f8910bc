// Package directory is the authoritative mapping from tenant
// identifier to schema name and lifecycle status.
//
// Reads dominate: every request hitting the edge resolves its tenant
// here, while writes happen only on lifecycle transitions. Resolution
// therefore goes through a TTL-bounded cache (in-process LRU by
// default, Redis-backed for fleet-wide invalidation) in front of a
// persistent Store. The TTL is the documented staleness bound — a
// suspended tenant stops resolving everywhere within one TTL, and
// immediately in the process that performed the suspension.
package directory
