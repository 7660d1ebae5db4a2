// Package config loads the application configuration from a .env file and
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DatabasePath string
	LogLevel     string
	// SettingsFile is an optional TOML file seeding the contract settings
	// when the database has none saved.
	SettingsFile string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	MaxBodyBytes int64
	// PatronDay is the local patron saint holiday as "MM-DD", empty for none.
	PatronDay string
}

// Load reads the .env files (missing ones are ignored) and then the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		Addr:         getEnv("WORKHOURS_ADDR", ":8080"),
		DatabasePath: getEnv("WORKHOURS_DB", "./workhours.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SettingsFile: getEnv("WORKHOURS_SETTINGS_FILE", ""),
		ReadTimeout:  getEnvDuration("WORKHOURS_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("WORKHOURS_WRITE_TIMEOUT", 30*time.Second),
		CORSOrigins:  getEnvList("WORKHOURS_CORS_ORIGINS", []string{"*"}),
		MaxBodyBytes: int64(getEnvInt("WORKHOURS_MAX_BODY_BYTES", 1048576)),
		PatronDay:    getEnv("WORKHOURS_PATRON_DAY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// Patron parses PatronDay.
func (c Config) Patron() (month time.Month, day int, ok bool) {
	if c.PatronDay == "" {
		return 0, 0, false
	}
	t, err := time.Parse("01-02", c.PatronDay)
	if err != nil {
		return 0, 0, false
	}
	return t.Month(), t.Day(), true
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("WORKHOURS_DB is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("WORKHOURS_READ_TIMEOUT and WORKHOURS_WRITE_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("WORKHOURS_MAX_BODY_BYTES must be at least 1024")
	}
	if c.PatronDay != "" {
		if _, _, ok := c.Patron(); !ok {
			return fmt.Errorf("WORKHOURS_PATRON_DAY must be MM-DD")
		}
	}
	if c.SettingsFile != "" {
		if _, err := os.Stat(c.SettingsFile); err != nil {
			return fmt.Errorf("WORKHOURS_SETTINGS_FILE: %w", err)
		}
	}
	return nil
}
