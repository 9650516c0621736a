package datasource

import (
	"fmt"
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/apperrors"
)

// identifierPattern is the shape of a sane SQL identifier. Anything outside
// it (quotes, whitespace, semicolons) is rejected before quoting even runs.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// maxIdentifierLen matches the tightest limit across supported backends
// (PostgreSQL truncates at 63 bytes).
const maxIdentifierLen = 63

// SafeIdentifier screens a database/schema/table/column name before it is
// interpolated into generated SQL. Identifiers come from backend catalogs,
// not users, but a hostile catalog entry must still never reach a query.
func SafeIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty identifier", apperrors.ErrUnsafeIdentifier)
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("%w: identifier exceeds %d bytes", apperrors.ErrUnsafeIdentifier, maxIdentifierLen)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q contains disallowed characters", apperrors.ErrUnsafeIdentifier, name)
	}
	if injected, _ := libinjection.IsSQLi(name); injected {
		return fmt.Errorf("%w: %q matched an injection fingerprint", apperrors.ErrUnsafeIdentifier, name)
	}
	return nil
}

// SafeTableIdentifiers screens every part of a qualified table reference.
func SafeTableIdentifiers(parts ...string) error {
	for _, p := range parts {
		if err := SafeIdentifier(p); err != nil {
			return err
		}
	}
	return nil
}
