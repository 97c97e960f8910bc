// Package pg bootstraps PostgreSQL connectivity for the toolkit: a
// retrying pgxpool constructor driven by env configuration, goose
// migrations for the shared directory schema, a pool health check, and
// error classification helpers used by the directory store and the
// schema provisioner.
package pg
