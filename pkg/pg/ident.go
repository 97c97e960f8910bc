package pg

import (
	"errors"
	"regexp"
)

// ErrInvalidIdentifier is returned when a name cannot be used as a
// PostgreSQL schema identifier.
var ErrInvalidIdentifier = errors.New("invalid postgres identifier")

// PostgreSQL truncates identifiers beyond 63 bytes; reject instead of
// letting the server silently shorten a tenant schema name.
const maxIdentifierLength = 63

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as an unquoted
// lowercase schema identifier. The schema router and provisioner both
// refuse to touch anything that fails this check, quoted or not.
func ValidIdentifier(name string) bool {
	if name == "" || len(name) > maxIdentifierLength {
		return false
	}
	return identifierPattern.MatchString(name)
}
