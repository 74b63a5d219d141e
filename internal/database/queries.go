package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns nil if no known format matches.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}

	return nil
}

// =============================================================================
// Calendar Writes
// =============================================================================

// SaveCalendar stores cal, replacing any calendar already stored for the
// same scheme and year. On success cal.ID and the cycle IDs are set.
func (db *DB) SaveCalendar(ctx context.Context, cal *Calendar) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		return tx.SaveCalendar(ctx, cal)
	})
}

// SaveCalendar stores cal within the transaction.
func (tx *Tx) SaveCalendar(ctx context.Context, cal *Calendar) error {
	return saveCalendar(ctx, tx, cal)
}

func saveCalendar(ctx context.Context, q querier, cal *Calendar) error {
	if _, err := deleteCalendar(ctx, q, cal.Scheme, cal.Year); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO calendars (epoch, cycle_length_days, year, cycle_count)
		VALUES (?, ?, ?, ?)
	`, cal.Scheme.Epoch, cal.Scheme.CycleLengthDays, cal.Year, len(cal.Cycles))
	if err != nil {
		return fmt.Errorf("insert calendar %d: %w", cal.Year, err)
	}

	cal.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get calendar id: %w", err)
	}

	for i := range cal.Cycles {
		cy := &cal.Cycles[i]
		cy.CalendarID = cal.ID

		res, err := q.ExecContext(ctx, `
			INSERT INTO cycles (calendar_id, year, ordinal, identifier, effective_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, cal.ID, cy.Year, cy.Ordinal, cy.Identifier, cy.EffectiveDate, cy.EndDate)
		if err != nil {
			return fmt.Errorf("insert cycle %s: %w", cy.Identifier, err)
		}

		cy.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get cycle id: %w", err)
		}
	}

	// Re-read generated_at so the caller sees the stored value.
	var generatedAt sql.NullString
	err = q.QueryRowContext(ctx, "SELECT generated_at FROM calendars WHERE id = ?", cal.ID).Scan(&generatedAt)
	if err != nil {
		return fmt.Errorf("read generated_at: %w", err)
	}
	if t := parseTimestamp(generatedAt); t != nil {
		cal.GeneratedAt = *t
	}

	return nil
}

// DeleteCalendar removes the calendar for scheme and year along with its
// cycles. Returns ErrNotFound if nothing was stored.
func (db *DB) DeleteCalendar(ctx context.Context, scheme Scheme, year int) error {
	n, err := deleteCalendar(ctx, db, scheme, year)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteCalendar(ctx context.Context, q querier, scheme Scheme, year int) (int64, error) {
	res, err := q.ExecContext(ctx, `
		DELETE FROM calendars
		WHERE epoch = ? AND cycle_length_days = ? AND year = ?
	`, scheme.Epoch, scheme.CycleLengthDays, year)
	if err != nil {
		return 0, fmt.Errorf("delete calendar %d: %w", year, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete calendar rows affected: %w", err)
	}
	return n, nil
}

// =============================================================================
// Calendar Reads
// =============================================================================

// GetCalendar returns the stored calendar for scheme and year with its
// cycles in ordinal order. Returns ErrNotFound if none is stored.
func (db *DB) GetCalendar(ctx context.Context, scheme Scheme, year int) (*Calendar, error) {
	cal := Calendar{Scheme: scheme, Year: year}
	var generatedAt sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, generated_at
		FROM calendars
		WHERE epoch = ? AND cycle_length_days = ? AND year = ?
	`, scheme.Epoch, scheme.CycleLengthDays, year).Scan(&cal.ID, &generatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query calendar %d: %w", year, err)
	}

	if t := parseTimestamp(generatedAt); t != nil {
		cal.GeneratedAt = *t
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, calendar_id, year, ordinal, identifier, effective_date, end_date
		FROM cycles
		WHERE calendar_id = ?
		ORDER BY ordinal ASC
	`, cal.ID)
	if err != nil {
		return nil, fmt.Errorf("query cycles for calendar %d: %w", year, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cy StoredCycle
		if err := rows.Scan(&cy.ID, &cy.CalendarID, &cy.Year, &cy.Ordinal,
			&cy.Identifier, &cy.EffectiveDate, &cy.EndDate); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		cal.Cycles = append(cal.Cycles, cy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}

	return &cal, nil
}

// ListCalendarYears returns the years stored for scheme, ascending.
func (db *DB) ListCalendarYears(ctx context.Context, scheme Scheme) ([]int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT year
		FROM calendars
		WHERE epoch = ? AND cycle_length_days = ?
		ORDER BY year ASC
	`, scheme.Epoch, scheme.CycleLengthDays)
	if err != nil {
		return nil, fmt.Errorf("query calendar years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan calendar year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar years: %w", err)
	}

	return years, nil
}

// FindCycle returns the stored cycle with the given identifier for scheme.
// Returns ErrNotFound if no stored calendar contains it.
func (db *DB) FindCycle(ctx context.Context, scheme Scheme, identifier string) (*StoredCycle, error) {
	var cy StoredCycle
	err := db.QueryRowContext(ctx, `
		SELECT c.id, c.calendar_id, c.year, c.ordinal, c.identifier, c.effective_date, c.end_date
		FROM cycles c
		JOIN calendars cal ON cal.id = c.calendar_id
		WHERE cal.epoch = ? AND cal.cycle_length_days = ? AND c.identifier = ?
		ORDER BY c.effective_date DESC
		LIMIT 1
	`, scheme.Epoch, scheme.CycleLengthDays, identifier).Scan(
		&cy.ID, &cy.CalendarID, &cy.Year, &cy.Ordinal, &cy.Identifier, &cy.EffectiveDate, &cy.EndDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query cycle %s: %w", identifier, err)
	}

	return &cy, nil
}

// GetStats counts stored calendars and cycles across all schemes.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calendars").Scan(&stats.Calendars); err != nil {
		return nil, fmt.Errorf("count calendars: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cycles").Scan(&stats.Cycles); err != nil {
		return nil, fmt.Errorf("count cycles: %w", err)
	}

	return &stats, nil
}
