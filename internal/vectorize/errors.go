package vectorize

import "github.com/cockroachdb/errors"

// ErrInvalidParameter marks a caller error in a dimension or seed argument.
var ErrInvalidParameter = errors.New("invalid parameter")

func invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}
