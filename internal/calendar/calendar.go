// Package calendar builds yearly cycle calendars and keeps them in a store.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/database"
)

// Year bounds accepted for calendars.
const (
	MinYear = 1
	MaxYear = 9999
)

// ErrYearOutOfRange is returned for years outside MinYear..MaxYear.
var ErrYearOutOfRange = errors.New("year out of range")

// Store persists calendars.
// This allows us to use either *database.DB or a test double.
type Store interface {
	GetCalendar(ctx context.Context, scheme database.Scheme, year int) (*database.Calendar, error)
	SaveCalendar(ctx context.Context, cal *database.Calendar) error
}

// Service serves year calendars from the store, generating and saving
// them on first request.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a calendar service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// SchemeFor returns the storage key of conv's grid.
func SchemeFor(conv *airac.Converter) database.Scheme {
	return database.Scheme{
		Epoch:           airac.FormatDate(conv.Epoch()),
		CycleLengthDays: conv.CycleLengthDays(),
	}
}

// Build computes the calendar of year without touching the store.
func Build(conv *airac.Converter, year int) (*database.Calendar, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}

	cycles := conv.CyclesInYear(year)
	cal := &database.Calendar{
		Scheme: SchemeFor(conv),
		Year:   year,
		Cycles: make([]database.StoredCycle, 0, len(cycles)),
	}
	for _, cy := range cycles {
		cal.Cycles = append(cal.Cycles, ToStored(conv, cy))
	}
	return cal, nil
}

// ToStored converts a computed cycle into its stored form.
func ToStored(conv *airac.Converter, cy airac.Cycle) database.StoredCycle {
	return database.StoredCycle{
		Year:          cy.Year,
		Ordinal:       cy.Ordinal,
		Identifier:    cy.Identifier.String(),
		EffectiveDate: airac.FormatDate(cy.EffectiveDate),
		EndDate:       airac.FormatDate(conv.EndDate(cy)),
	}
}

// Year returns the calendar of year, reading it from the store when present
// and generating and saving it otherwise. The bool reports whether the
// calendar came from the store.
func (s *Service) Year(ctx context.Context, conv *airac.Converter, year int) (*database.Calendar, bool, error) {
	if err := checkYear(year); err != nil {
		return nil, false, err
	}

	cal, err := s.store.GetCalendar(ctx, SchemeFor(conv), year)
	if err == nil {
		return cal, true, nil
	}
	if !database.IsNotFound(err) {
		return nil, false, fmt.Errorf("get calendar %d: %w", year, err)
	}

	cal, err = s.Regenerate(ctx, conv, year)
	if err != nil {
		return nil, false, err
	}
	return cal, false, nil
}

// Regenerate computes the calendar of year and saves it, replacing any
// stored copy.
func (s *Service) Regenerate(ctx context.Context, conv *airac.Converter, year int) (*database.Calendar, error) {
	cal, err := Build(conv, year)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveCalendar(ctx, cal); err != nil {
		return nil, fmt.Errorf("save calendar %d: %w", year, err)
	}

	s.logger.Debug("calendar generated",
		slog.Int("year", year),
		slog.Int("cycle_length_days", cal.Scheme.CycleLengthDays),
		slog.Int("cycles", len(cal.Cycles)),
	)

	return cal, nil
}

// GenerateRange regenerates every year from..to inclusive and returns the
// number of cycles saved.
func (s *Service) GenerateRange(ctx context.Context, conv *airac.Converter, from, to int) (int, error) {
	if from > to {
		return 0, fmt.Errorf("invalid year range %d..%d", from, to)
	}

	total := 0
	for year := from; year <= to; year++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		cal, err := s.Regenerate(ctx, conv, year)
		if err != nil {
			return total, err
		}
		total += len(cal.Cycles)
	}
	return total, nil
}

// Current returns the cycle containing now, in UTC.
func Current(conv *airac.Converter, now time.Time) airac.Cycle {
	return conv.DateToCycle(now.UTC())
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrYearOutOfRange, year, MinYear, MaxYear)
	}
	return nil
}
