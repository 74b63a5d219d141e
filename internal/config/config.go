// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file holding generated calendars

	// Authentication
	APIKey string // API key for calendar regeneration

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Cycles
	CycleLengthWeeks int    // Cycle length in weeks (4 for classic AIRAC)
	Epoch            string // Cycle-0 anchor date, YYYY-MM-DD
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cycle defaults
const (
	DefaultCycleLengthWeeks = 4
	DefaultEpoch            = "1901-01-10"
	MaxCycleLengthWeeks     = 52
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Database
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/airac.db")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Cycles
	cfg.CycleLengthWeeks = getEnvInt("CYCLE_LENGTH_WEEKS", DefaultCycleLengthWeeks)
	cfg.Epoch = getEnv("AIRAC_EPOCH", DefaultEpoch)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if c.CycleLengthWeeks < 1 || c.CycleLengthWeeks > MaxCycleLengthWeeks {
		errs = append(errs, fmt.Errorf("CYCLE_LENGTH_WEEKS must be between 1 and %d, got %d",
			MaxCycleLengthWeeks, c.CycleLengthWeeks))
	}

	if _, err := time.Parse("2006-01-02", c.Epoch); err != nil {
		errs = append(errs, fmt.Errorf("AIRAC_EPOCH must be a YYYY-MM-DD date; got %q", c.Epoch))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EpochDate returns the configured epoch as a date.
// Call only on a validated config.
func (c *Config) EpochDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.Epoch)
	return t
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
