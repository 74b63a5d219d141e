package airac

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("invalid date")

	// ErrInvalidIdentifier is matched by every *InvalidIdentifierError.
	ErrInvalidIdentifier = errors.New("invalid cycle identifier")

	// ErrInvalidConfig is returned by NewConverter for unusable settings.
	ErrInvalidConfig = errors.New("invalid converter configuration")
)

// ParseError reports text that is not a calendar date in DateLayout,
// including well-formed text naming a day that does not exist.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q (want YYYY-MM-DD): %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// InvalidIdentifierError reports an identifier that cannot be split into a
// two-digit year fragment and a two-digit ordinal, or whose ordinal can never
// occur for the converter's cycle length.
type InvalidIdentifierError struct {
	Input  string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid cycle identifier %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidIdentifier) match.
func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrInvalidIdentifier }

// IsParseError checks if an error is a date parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsInvalidIdentifier checks if an error is an identifier validation error.
func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}
