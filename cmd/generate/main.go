// Command generate computes cycle calendars for a range of years and stores
// them in the SQLite database.
//
// Usage:
//
//	go run ./cmd/generate -db data/airac.db -from 2020 -to 2030
//
// This tool:
// 1. Creates/opens the SQLite database
// 2. Runs migrations to ensure schema is current
// 3. Generates every year in the range and saves it, replacing stored copies
// 4. Prints a summary of what the store now holds
//
// Generation is idempotent - running it twice leaves the same calendars.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/calendar"
	"github.com/zapponejosh/airac-api/internal/config"
	"github.com/zapponejosh/airac-api/internal/database"
	"github.com/zapponejosh/airac-api/internal/logger"
)

func main() {
	thisYear := time.Now().UTC().Year()

	// Parse command line flags
	dbPath := flag.String("db", "data/airac.db", "Path to SQLite database")
	from := flag.Int("from", thisYear, "First year to generate")
	to := flag.Int("to", thisYear+10, "Last year to generate")
	weeks := flag.Int("weeks", config.DefaultCycleLengthWeeks, "Cycle length in weeks")
	epoch := flag.String("epoch", config.DefaultEpoch, "Cycle grid epoch (YYYY-MM-DD)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	log := logger.New(os.Stdout, logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *dbPath, *from, *to, *weeks, *epoch, log); err != nil {
		log.Error("generate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("generate complete")
}

func run(ctx context.Context, dbPath string, from, to, weeks int, epochStr string, log *slog.Logger) error {
	startTime := time.Now()

	// =========================================================================
	// Step 1: Build the converter
	// =========================================================================
	if weeks < 1 || weeks > config.MaxCycleLengthWeeks {
		return fmt.Errorf("weeks must be between 1 and %d, got %d", config.MaxCycleLengthWeeks, weeks)
	}

	epoch, err := airac.ParseDate(epochStr)
	if err != nil {
		return fmt.Errorf("parse epoch: %w", err)
	}

	conv, err := airac.NewConverter(airac.Config{
		Epoch:           epoch,
		CycleLengthDays: airac.CycleLengthWeeks(weeks),
	})
	if err != nil {
		return fmt.Errorf("build converter: %w", err)
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	log.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Generate calendars
	// =========================================================================
	log.Info("generating calendars",
		slog.Int("from", from),
		slog.Int("to", to),
		slog.Int("cycle_length_days", conv.CycleLengthDays()),
	)

	svc := calendar.NewService(db, log)
	cycles, err := svc.GenerateRange(ctx, conv, from, to)
	if err != nil {
		return fmt.Errorf("generate calendars: %w", err)
	}

	// =========================================================================
	// Step 4: Verify
	// =========================================================================
	years, err := db.ListCalendarYears(ctx, calendar.SchemeFor(conv))
	if err != nil {
		return fmt.Errorf("list calendar years: %w", err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	elapsed := time.Since(startTime)

	log.Info("generate verified",
		slog.Int("years_for_scheme", len(years)),
		slog.Int("stored_calendars", stats.Calendars),
		slog.Int("stored_cycles", stats.Cycles),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Generate Summary ===")
	fmt.Printf("Years generated:     %d (%d-%d)\n", to-from+1, from, to)
	fmt.Printf("Cycles generated:    %d\n", cycles)
	fmt.Printf("Cycle length:        %d days\n", conv.CycleLengthDays())
	fmt.Printf("Calendars stored:    %d\n", stats.Calendars)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
