// Package airac converts between calendar dates and AIRAC cycle identifiers.
//
// Cycles are fixed-length periods laid on a grid anchored at an epoch date:
// every cycle starts on epoch + k*length for some integer k. The classic
// AIRAC scheme uses 28-day cycles from 10 January 1901, which is the default.
//
// All arithmetic works on whole-day counts. Dates are represented as
// time.Time values at midnight UTC; any time of day or location on an input
// is discarded.
package airac

import (
	"fmt"
	"time"
)

const (
	// DefaultCycleLengthDays is the length of a classic AIRAC cycle.
	DefaultCycleLengthDays = 28

	// DateLayout is the textual date format accepted and produced.
	DateLayout = "2006-01-02"

	daysPerWeek   = 7
	secondsPerDay = 24 * 60 * 60
	maxYearDays   = 366
)

// DefaultEpoch is the historical AIRAC anchor, 10 January 1901.
var DefaultEpoch = time.Date(1901, time.January, 10, 0, 0, 0, 0, time.UTC)

// CycleLengthWeeks returns the day length of a cycle spanning weeks weeks.
func CycleLengthWeeks(weeks int) int {
	return weeks * daysPerWeek
}

// Config holds converter settings.
type Config struct {
	Epoch           time.Time // Cycle-0 anchor; zero means DefaultEpoch
	CycleLengthDays int       // Positive; zero means DefaultCycleLengthDays
}

// DefaultConfig returns the classic 28-day AIRAC configuration.
func DefaultConfig() Config {
	return Config{
		Epoch:           DefaultEpoch,
		CycleLengthDays: DefaultCycleLengthDays,
	}
}

// Cycle is the result of every conversion.
type Cycle struct {
	EffectiveDate time.Time  // First day of the cycle
	Year          int        // Calendar year of EffectiveDate
	Ordinal       int        // 1-based index of the cycle within Year
	Identifier    Identifier // YYOO code
}

// String returns e.g. "2001 (2020-01-02)".
func (c Cycle) String() string {
	return fmt.Sprintf("%s (%s)", c.Identifier, FormatDate(c.EffectiveDate))
}

// Converter maps dates to cycles and back. It holds no mutable state and is
// safe for concurrent use.
type Converter struct {
	epoch    time.Time
	epochDay int64
	length   int64
}

// NewConverter validates cfg and returns a converter for it.
func NewConverter(cfg Config) (*Converter, error) {
	epoch := cfg.Epoch
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	length := cfg.CycleLengthDays
	if length == 0 {
		length = DefaultCycleLengthDays
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: cycle length must be positive, got %d days", ErrInvalidConfig, length)
	}

	epoch = dateOnly(epoch)
	return &Converter{
		epoch:    epoch,
		epochDay: dayNumber(epoch),
		length:   int64(length),
	}, nil
}

// Default returns a converter for the classic 28-day AIRAC scheme.
func Default() *Converter {
	c, _ := NewConverter(DefaultConfig())
	return c
}

// Epoch returns the cycle-0 anchor date.
func (c *Converter) Epoch() time.Time { return c.epoch }

// CycleLengthDays returns the length of one cycle in days.
func (c *Converter) CycleLengthDays() int { return int(c.length) }

// MaxOrdinal is the highest ordinal a year can reach: ceil(366 / length).
// For 28-day cycles this is 14, reached only when a cycle starts within the
// last days of the year.
func (c *Converter) MaxOrdinal() int {
	return int((maxYearDays + c.length - 1) / c.length)
}

// DateToCycle returns the cycle containing date. Cycles are closed-open:
// the result's EffectiveDate is the latest boundary at or before date.
func (c *Converter) DateToCycle(date time.Time) Cycle {
	return c.normalize(c.boundary(c.index(date)))
}

// DateStringToCycle parses a YYYY-MM-DD date and returns its cycle.
func (c *Converter) DateStringToCycle(s string) (Cycle, error) {
	date, err := ParseDate(s)
	if err != nil {
		return Cycle{}, err
	}
	return c.DateToCycle(date), nil
}

// CycleToDate returns the cycle named by id.
//
// The year comes from the fragment by the century rule (see Identifier.Year).
// The ordinal counts boundaries after 31 December of the previous year, so an
// ordinal past the last cycle of that year lands in a later year, ordinal 0
// names the cycle containing 31 December of the previous year, and the
// returned cycle carries the normalized identifier.
func (c *Converter) CycleToDate(id Identifier) (Cycle, error) {
	if id.YearFragment < 0 || id.YearFragment > 99 {
		return Cycle{}, &InvalidIdentifierError{
			Input:  id.String(),
			Reason: "year fragment must be between 0 and 99",
		}
	}
	if id.Ordinal < 0 || id.Ordinal > 99 {
		return Cycle{}, &InvalidIdentifierError{
			Input:  id.String(),
			Reason: "ordinal must be between 0 and 99",
		}
	}

	prevYearEnd := time.Date(id.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	k := c.index(prevYearEnd) + int64(id.Ordinal)
	return c.normalize(c.boundary(k)), nil
}

// IdentifierStringToCycle parses the textual YYOO form and returns its cycle.
func (c *Converter) IdentifierStringToCycle(s string) (Cycle, error) {
	id, err := ParseIdentifier(s)
	if err != nil {
		return Cycle{}, err
	}
	return c.CycleToDate(id)
}

// IdentifierIntToCycle returns the cycle for a numeric identifier in 0..9999.
func (c *Converter) IdentifierIntToCycle(n int) (Cycle, error) {
	id, err := IdentifierFromInt(n)
	if err != nil {
		return Cycle{}, err
	}
	return c.CycleToDate(id)
}

// EndDate returns the last day that belongs to cycle cy.
func (c *Converter) EndDate(cy Cycle) time.Time {
	return cy.EffectiveDate.AddDate(0, 0, int(c.length)-1)
}

// Contains reports whether date falls within cycle cy.
func (c *Converter) Contains(cy Cycle, date time.Time) bool {
	d := dayNumber(dateOnly(date))
	start := dayNumber(cy.EffectiveDate)
	return d >= start && d < start+c.length
}

// Next returns the cycle following cy.
func (c *Converter) Next(cy Cycle) Cycle {
	return c.normalize(c.boundary(c.index(cy.EffectiveDate) + 1))
}

// Previous returns the cycle preceding cy.
func (c *Converter) Previous(cy Cycle) Cycle {
	return c.normalize(c.boundary(c.index(cy.EffectiveDate) - 1))
}

// CyclesInYear returns every cycle whose effective date falls in year, in
// order. Ordinals run from 1 without gaps.
func (c *Converter) CyclesInYear(year int) []Cycle {
	prevYearEnd := time.Date(year-1, time.December, 31, 0, 0, 0, 0, time.UTC)

	var cycles []Cycle
	for k := c.index(prevYearEnd) + 1; ; k++ {
		start := c.boundary(k)
		if start.Year() != year {
			break
		}
		cycles = append(cycles, c.normalize(start))
	}
	return cycles
}

// CyclesBetween returns the cycles whose span intersects [start, end], in
// order. It returns nil when end is before start.
func (c *Converter) CyclesBetween(start, end time.Time) []Cycle {
	if dateOnly(end).Before(dateOnly(start)) {
		return nil
	}

	first, last := c.index(start), c.index(end)
	cycles := make([]Cycle, 0, last-first+1)
	for k := first; k <= last; k++ {
		cycles = append(cycles, c.normalize(c.boundary(k)))
	}
	return cycles
}

// index is the signed grid index of the cycle containing date.
func (c *Converter) index(date time.Time) int64 {
	return floorDiv(dayNumber(dateOnly(date))-c.epochDay, c.length)
}

// boundary is the effective date of grid cycle k.
func (c *Converter) boundary(k int64) time.Time {
	return fromDayNumber(c.epochDay + k*c.length)
}

// normalize derives year, ordinal and identifier from an effective date.
// Both conversion directions go through here.
func (c *Converter) normalize(effective time.Time) Cycle {
	year := effective.Year()
	ordinal := (effective.YearDay()-1)/int(c.length) + 1
	return Cycle{
		EffectiveDate: effective,
		Year:          year,
		Ordinal:       ordinal,
		Identifier:    identifierFor(year, ordinal),
	}
}

// =============================================================================
// Date helpers
// =============================================================================

// ParseDate parses a YYYY-MM-DD string. Impossible dates such as 2021-02-30
// are rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Err: err}
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// dateOnly drops time of day and location, keeping the calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayNumber counts days since 1970-01-01 for a UTC midnight.
func dayNumber(t time.Time) int64 {
	return t.Unix() / secondsPerDay
}

func fromDayNumber(n int64) time.Time {
	return time.Unix(n*secondsPerDay, 0).UTC()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
