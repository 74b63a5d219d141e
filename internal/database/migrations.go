package database

import (
	"context"
	"fmt"
	"log/slog"
)

// migrationsSQL contains all database migrations, applied in version order.
var migrationsSQL = map[int]string{
	1: migrationV1Calendars,
}

// migrationV1Calendars creates the calendar store.
//
// A calendar is the list of cycles starting in one calendar year for one
// scheme (epoch + cycle length). Cycles belong to exactly one calendar and
// are replaced together with it.
const migrationV1Calendars = `
-- ============================================================================
-- Table: calendars
-- ============================================================================
CREATE TABLE IF NOT EXISTS calendars (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Scheme: epoch date (YYYY-MM-DD) and cycle length in days
    epoch TEXT NOT NULL,
    cycle_length_days INTEGER NOT NULL CHECK (cycle_length_days > 0),

    year INTEGER NOT NULL,
    cycle_count INTEGER NOT NULL CHECK (cycle_count >= 0),

    generated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (epoch, cycle_length_days, year)
);

-- ============================================================================
-- Table: cycles
-- ============================================================================
CREATE TABLE IF NOT EXISTS cycles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    calendar_id INTEGER NOT NULL,

    year INTEGER NOT NULL,
    ordinal INTEGER NOT NULL CHECK (ordinal >= 1),

    -- Zero-padded YYOO code, e.g. '0301'
    identifier TEXT NOT NULL CHECK (length(identifier) = 4),

    -- First and last day of the cycle (YYYY-MM-DD)
    effective_date TEXT NOT NULL,
    end_date TEXT NOT NULL,

    FOREIGN KEY (calendar_id) REFERENCES calendars(id) ON DELETE CASCADE,
    UNIQUE (calendar_id, ordinal)
);

CREATE INDEX IF NOT EXISTS idx_cycles_calendar
    ON cycles(calendar_id);

CREATE INDEX IF NOT EXISTS idx_cycles_identifier
    ON cycles(identifier);
`

// Migrate runs all pending database migrations.
//
// Forward-only: versions recorded in schema_migrations are skipped, the
// rest are applied in order inside one transaction.
//
// Returns the number of migrations applied.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	db.logger.Info("running database migrations")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return 0, err
	}

	count := 0
	for version := 1; version <= len(migrationsSQL); version++ {
		if applied[version] {
			db.logger.Debug("migration already applied", slog.Int("version", version))
			continue
		}

		content, ok := migrationsSQL[version]
		if !ok {
			return count, fmt.Errorf("migration %d not found", version)
		}

		db.logger.Info("applying migration", slog.Int("version", version))

		if _, err := tx.ExecContext(ctx, content); err != nil {
			return count, fmt.Errorf("execute migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return count, fmt.Errorf("record migration %d: %w", version, err)
		}

		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("commit migrations: %w", err)
	}

	db.logger.Info("migrations complete",
		slog.Int("applied", count),
		slog.Int("total", len(migrationsSQL)),
	)

	return count, nil
}

func appliedVersions(ctx context.Context, q querier) (map[int]bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration versions: %w", err)
	}

	return applied, nil
}
