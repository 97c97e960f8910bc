// Package httpserver is a thin wrapper around net/http that adds
// graceful shutdown on context cancellation or SIGINT/SIGTERM,
// env-driven timeout configuration, and probe handlers. The gateway
// binary runs on it.
package httpserver
