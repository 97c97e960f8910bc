// Package cache provides a generic, thread-safe LRU cache with
// optional per-cache TTL.
//
// The TTL variant backs the tenant directory's read cache, where the
// TTL is the documented staleness bound: a suspended tenant stops
// resolving as active once its cached entry ages out, at the latest.
package cache
