package statement

import (
	"fmt"
	"regexp"
)

// identifierPattern limits table and column names to plain unquoted
// identifiers of at most 64 characters (the MySQL limit).
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]{0,63}$`)

// ValidateIdentifier reports whether name can be used as an unquoted table
// or column name.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s name cannot be empty", ErrInvalidInput, kind)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: invalid %s name %q", ErrInvalidInput, kind, name)
	}
	return nil
}
