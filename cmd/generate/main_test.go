package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/calendar"
	"github.com/zapponejosh/airac-api/internal/database"
	"github.com/zapponejosh/airac-api/internal/logger"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "airac.db")

	if err := run(ctx, dbPath, 2020, 2024, 4, "1901-01-10", logger.Discard()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	db, err := database.Open(database.DefaultConfig(dbPath), logger.Discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	years, err := db.ListCalendarYears(ctx, calendar.SchemeFor(airac.Default()))
	if err != nil {
		t.Fatalf("ListCalendarYears() error = %v", err)
	}
	if len(years) != 5 || years[0] != 2020 || years[4] != 2024 {
		t.Errorf("ListCalendarYears() = %v, want 2020..2024", years)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	// 2020 has 14 cycles, 2021-2024 have 13 each.
	if stats.Cycles != 14+4*13 {
		t.Errorf("stats.Cycles = %d, want %d", stats.Cycles, 14+4*13)
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "airac.db")

	tests := []struct {
		name     string
		from, to int
		weeks    int
		epoch    string
	}{
		{"weeks zero", 2020, 2021, 0, "1901-01-10"},
		{"bad epoch", 2020, 2021, 4, "1901-13-10"},
		{"reversed range", 2021, 2020, 4, "1901-01-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), dbPath, tt.from, tt.to, tt.weeks, tt.epoch, logger.Discard())
			if err == nil {
				t.Error("run() expected error")
			}
		})
	}
}
