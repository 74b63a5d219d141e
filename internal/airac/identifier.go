package airac

import (
	"fmt"
	"strconv"
)

const (
	// CenturyCutoffYear separates 19xx from 20xx when expanding a two-digit
	// year fragment: fragment+1900 at or below the cutoff moves to the next
	// century, so fragment 63 means 2063 and fragment 64 means 1964.
	CenturyCutoffYear = 1963

	// MaxIdentifier is the largest numeric identifier (fragment 99, ordinal 99).
	MaxIdentifier = 9999

	identifierDigits = 4
	centuryBase      = 1900
)

// Identifier is the compact YYOO code of a cycle: the two-digit year
// fragment followed by the two-digit ordinal. The zero-padded string form
// ("0301") and the integer form (301) denote the same identifier.
type Identifier struct {
	YearFragment int // 0-99
	Ordinal      int // 0-99; values past the year roll over when converted
}

// NewIdentifier builds an identifier from a pre-split year fragment and ordinal.
func NewIdentifier(yearFragment, ordinal int) (Identifier, error) {
	if yearFragment < 0 || yearFragment > 99 {
		return Identifier{}, &InvalidIdentifierError{
			Input:  fmt.Sprintf("%d/%d", yearFragment, ordinal),
			Reason: "year fragment must be between 0 and 99",
		}
	}
	if ordinal < 0 || ordinal > 99 {
		return Identifier{}, &InvalidIdentifierError{
			Input:  fmt.Sprintf("%d/%d", yearFragment, ordinal),
			Reason: "ordinal must be between 0 and 99",
		}
	}
	return Identifier{YearFragment: yearFragment, Ordinal: ordinal}, nil
}

// IdentifierFromInt splits a numeric identifier in 0..9999.
func IdentifierFromInt(n int) (Identifier, error) {
	if n < 0 || n > MaxIdentifier {
		return Identifier{}, &InvalidIdentifierError{
			Input:  strconv.Itoa(n),
			Reason: fmt.Sprintf("must be between 0 and %d", MaxIdentifier),
		}
	}
	return Identifier{YearFragment: n / 100, Ordinal: n % 100}, nil
}

// ParseIdentifier parses the textual YYOO form. The text must be exactly
// four ASCII digits; signs, spaces and shorter forms such as "301" are
// rejected.
func ParseIdentifier(s string) (Identifier, error) {
	if len(s) != identifierDigits {
		return Identifier{}, &InvalidIdentifierError{
			Input:  s,
			Reason: fmt.Sprintf("must be exactly %d digits", identifierDigits),
		}
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Identifier{}, &InvalidIdentifierError{
				Input:  s,
				Reason: fmt.Sprintf("non-digit character %q at position %d", c, i+1),
			}
		}
		n = n*10 + int(c-'0')
	}
	return Identifier{YearFragment: n / 100, Ordinal: n % 100}, nil
}

// Year expands the two-digit fragment into a four-digit year using the
// CenturyCutoffYear rule.
func (id Identifier) Year() int {
	year := id.YearFragment + centuryBase
	if year <= CenturyCutoffYear {
		year += 100
	}
	return year
}

// Int returns the numeric form, e.g. 301 for "0301".
func (id Identifier) Int() int {
	return id.YearFragment*100 + id.Ordinal
}

// String returns the zero-padded four-character form.
func (id Identifier) String() string {
	return fmt.Sprintf("%02d%02d", id.YearFragment, id.Ordinal)
}

// MarshalText renders the zero-padded form, so JSON carries "0301" rather
// than a number that has lost its padding.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts the four-digit textual form.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// identifierFor derives the identifier of a normalized cycle.
func identifierFor(year, ordinal int) Identifier {
	fragment := year % 100
	if fragment < 0 {
		fragment += 100
	}
	return Identifier{YearFragment: fragment, Ordinal: ordinal}
}
