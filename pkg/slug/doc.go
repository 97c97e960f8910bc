// Package slug converts arbitrary display names into identifier-safe
// slugs. The lifecycle manager derives tenant IDs and schema names
// from tenant display names with it, using "_" as separator and a
// random suffix so each allocation attempt yields a fresh identifier.
package slug
