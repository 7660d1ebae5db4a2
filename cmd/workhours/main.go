/*
main.go - Application entry point

PURPOSE:
  Starts the work-hours tracker server and runs one-off reports from the
  command line. Handles configuration, dependency injection, and graceful
  shutdown.

COMMANDS:
  serve                      HTTP API (see api/server.go)
  month YEAR MONTH           Print a computed month as JSON, or --xlsx FILE
  year YEAR                  Print the twelve month summaries
  net YEAR MONTH             Print the net estimate (--basis actual|baseline)
  holidays YEAR              Print the national and user holidays of a year
  demo SCENARIO YEAR MONTH   Reset the database and load demo data (--list)

CONFIGURATION:
  Read from .env and the environment (see config/config.go). --env picks a
  different .env file, --db overrides WORKHOURS_DB.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  workhours serve --db ./data/workhours.db

  # Run with in-memory database
  workhours serve --db :memory:

  # Export a month
  workhours month 2025 3 --xlsx march.xlsx

SEE ALSO:
  - api/server.go: Router configuration
  - tracker/service.go: The computations
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/config"
	"github.com/warp/workhours/logging"
	"github.com/warp/workhours/store/sqlite"
	"github.com/warp/workhours/tracker"
)

const appVersion = "0.3.0"

// app is what every command needs once the configuration is loaded.
type app struct {
	cfg      config.Config
	log      *logrus.Logger
	store    *sqlite.Store
	national ccnl.ItalianHolidays
	service  *tracker.Service
}

func main() {
	var (
		envFile string
		dbPath  string
	)

	root := &cobra.Command{
		Use:           "workhours",
		Short:         "Work hours and earnings tracker for metalworker contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = appVersion
	root.SetVersionTemplate("workhours v{{.Version}}\n")
	root.PersistentFlags().StringVar(&envFile, "env", ".env", "Path of the .env file")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides WORKHOURS_DB, \":memory:\" for in-memory)")

	open := func() (*app, error) {
		cfg := config.Load(envFile)
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		return newApp(cfg)
	}

	root.AddCommand(
		serveCommand(open),
		monthCommand(open),
		yearCommand(open),
		netCommand(open),
		holidaysCommand(open),
		demoCommand(open),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logging.New(cfg.LogLevel)

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	national := ccnl.ItalianHolidays{}
	if month, day, ok := cfg.Patron(); ok {
		national.Patron = &ccnl.MonthDay{Month: month, Day: day}
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		national: national,
		service:  tracker.NewService(st, national, log),
	}

	if cfg.SettingsFile != "" {
		if _, err := a.service.SeedSettings(context.Background(), cfg.SettingsFile); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to seed settings: %w", err)
		}
	}
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
