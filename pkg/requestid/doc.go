// Package requestid assigns and propagates per-request identifiers.
// The gateway mounts Middleware ahead of authentication so every log
// line and forwarded request can be correlated end to end.
package requestid
