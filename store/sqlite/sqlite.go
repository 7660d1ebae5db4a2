/*
Package sqlite provides a SQLite-backed implementation of store.Repository.

PURPOSE:
  Persists work day entries, the standby calendar, user holidays and the
  saved settings document. It is also the engine's EntrySource,
  StandbySource, SettingsSource and (for user holidays) HolidayCalendar.

KEY TABLES:
  work_entries:  One row per date; the entry itself is a JSON payload
  standby_days:  Dates flagged in the standby calendar
  holidays:      User holidays, optionally recurring every year
  settings:      Single row holding the partial settings document

PAYLOADS:
  Entries are stored as JSON so that new entry fields never need a
  migration. The date column is duplicated out of the payload for range
  queries and the one-entry-per-date constraint.

CONCURRENCY:
  Uses sync.RWMutex around the connection pool. Reads from concurrent
  month computations (tracker.YearSummary) share the read lock.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  repo, err := sqlite.New("./data/workhours.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

  svc := tracker.NewService(repo, ccnl.ItalianHolidays{}, logger)

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/store"
)

// Store implements store.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_entries_date
		ON work_entries(date);

	CREATE TABLE IF NOT EXISTS standby_days (
		date TEXT PRIMARY KEY,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRIES (engine.EntrySource)
// =============================================================================

// EntriesForMonth returns the entries of a month in date order.
func (s *Store) EntriesForMonth(ctx context.Context, year int, month time.Month) ([]engine.WorkDayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	period := engine.MonthPeriod(year, month)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM work_entries WHERE date BETWEEN ? AND ? ORDER BY date ASC",
		period.Start.String(), period.End.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []engine.WorkDayEntry
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		entry, err := decodeEntry(id, payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetEntry retrieves the entry of a date.
func (s *Store) GetEntry(ctx context.Context, date engine.TimePoint) (*engine.WorkDayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id, payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, payload FROM work_entries WHERE date = ?", date.String(),
	).Scan(&id, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", date, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	entry, err := decodeEntry(id, payload)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveEntry inserts or replaces the entry of a date. A replaced entry keeps
// its original ID.
func (s *Store) SaveEntry(ctx context.Context, entry *engine.WorkDayEntry) error {
	if entry == nil || entry.Date.IsZero() {
		return fmt.Errorf("entry without date: %w", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM work_entries WHERE date = ?", entry.Date.String()).Scan(&existing)
	switch {
	case err == nil:
		entry.ID = existing
	case errors.Is(err, sql.ErrNoRows):
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
	default:
		return err
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO work_entries (id, date, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, entry.ID, entry.Date.String(), string(payload), now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("entry id %s already used: %w", entry.ID, store.ErrInvalidInput)
		}
		return err
	}
	return tx.Commit()
}

// DeleteEntry removes the entry of a date.
func (s *Store) DeleteEntry(ctx context.Context, date engine.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM work_entries WHERE date = ?", date.String())
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Sprintf("entry %s", date))
}

func decodeEntry(id, payload string) (engine.WorkDayEntry, error) {
	var entry engine.WorkDayEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return engine.WorkDayEntry{}, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}
	entry.ID = id
	return entry, nil
}

// =============================================================================
// STANDBY CALENDAR (engine.StandbySource)
// =============================================================================

// StandbyDates returns the flagged dates in [from, to].
func (s *Store) StandbyDates(ctx context.Context, from, to engine.TimePoint) ([]engine.TimePoint, error) {
	days, err := s.ListStandby(ctx, from, to)
	if err != nil {
		return nil, err
	}
	dates := make([]engine.TimePoint, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates, nil
}

// ListStandby returns the standby days in [from, to] with their notes.
func (s *Store) ListStandby(ctx context.Context, from, to engine.TimePoint) ([]store.StandbyDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT date, note FROM standby_days WHERE date BETWEEN ? AND ? ORDER BY date ASC",
		from.String(), to.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query standby days: %w", err)
	}
	defer rows.Close()

	var days []store.StandbyDay
	for rows.Next() {
		var dateStr string
		var note sql.NullString
		if err := rows.Scan(&dateStr, &note); err != nil {
			return nil, err
		}
		date, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		days = append(days, store.StandbyDay{Date: date, Note: note.String})
	}
	return days, rows.Err()
}

// SetStandby flags a date. Flagging it again replaces the note.
func (s *Store) SetStandby(ctx context.Context, day store.StandbyDay) error {
	if day.Date.IsZero() {
		return fmt.Errorf("standby day without date: %w", store.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO standby_days (date, note, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET note = excluded.note
	`, day.Date.String(), nullString(day.Note), time.Now().UTC().Format(time.RFC3339))
	return err
}

// ClearStandby removes the flag of a date.
func (s *Store) ClearStandby(ctx context.Context, date engine.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM standby_days WHERE date = ?", date.String())
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Sprintf("standby day %s", date))
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday saves a holiday, assigning an ID when it has none.
func (s *Store) SaveHoliday(ctx context.Context, h *store.Holiday) error {
	if h == nil || h.Date.IsZero() || strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("holiday needs a date and a name: %w", store.ErrInvalidInput)
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`, h.ID, h.Date.String(), h.Name, h.Recurring, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	// On conflict the stored row keeps its own ID.
	return s.db.QueryRowContext(ctx,
		"SELECT id FROM holidays WHERE date = ? AND name = ?", h.Date.String(), h.Name,
	).Scan(&h.ID)
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Sprintf("holiday %s", id))
}

// ListHolidays returns all holidays as stored (for admin UI).
func (s *Store) ListHolidays(ctx context.Context) ([]store.Holiday, error) {
	return s.queryHolidays(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date ASC")
}

// HolidaysInYear returns the holidays of a year, recurring ones moved into it.
func (s *Store) HolidaysInYear(ctx context.Context, year int) ([]store.Holiday, error) {
	all, err := s.queryHolidays(ctx, `
		SELECT id, date, name, recurring
		FROM holidays
		WHERE recurring = TRUE OR strftime('%Y', date) = ?
		ORDER BY strftime('%m-%d', date) ASC
	`, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, err
	}
	out := make([]store.Holiday, 0, len(all))
	for _, h := range all {
		if moved, ok := h.InYear(year); ok {
			out = append(out, moved)
		}
	}
	return out, nil
}

// IsHoliday checks if a date is a user holiday.
func (s *Store) IsHoliday(date engine.TimePoint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (recurring = FALSE AND date = ?)
		   OR (recurring = TRUE AND strftime('%m-%d', date) = ?)
	`

	var count int
	err := s.db.QueryRow(query, date.String(), date.Time.Format("01-02")).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]store.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []store.Holiday
	for rows.Next() {
		var h store.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		if h.Date, err = engine.ParseDate(dateStr); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// SETTINGS (engine.SettingsSource)
// =============================================================================

// SaveSettings stores the partial settings document, replacing the previous one.
func (s *Store) SaveSettings(ctx context.Context, sj factory.SettingsJSON) error {
	payload, err := json.Marshal(sj)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

// RawSettings returns the saved document, empty when nothing was saved.
func (s *Store) RawSettings(ctx context.Context) (factory.SettingsJSON, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM settings WHERE id = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return factory.SettingsJSON{}, nil
	}
	if err != nil {
		return factory.SettingsJSON{}, err
	}
	return factory.DecodeJSON([]byte(payload))
}

// LoadSettings resolves the saved document against the defaults.
func (s *Store) LoadSettings(ctx context.Context) (engine.Settings, error) {
	sj, err := s.RawSettings(ctx)
	if err != nil {
		return engine.Settings{}, err
	}
	return factory.ResolveSettings(sj)
}

// Reset clears all data. Scenario loading starts from it.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"work_entries", "standby_days", "holidays", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
