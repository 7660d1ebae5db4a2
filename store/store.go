/*
store.go - Persistence interface for entries, calendars and settings

PURPOSE:
  Defines the interface between the tracker service and the database. The
  engine never touches storage: a Repository loads the inputs (entries,
  standby calendar, custom holidays, settings) and the tracker hands them
  to the engine.

KEY INTERFACES:
  Repository: all reads and writes of the application state. It also
              satisfies engine.EntrySource, engine.StandbySource and
              engine.SettingsSource.

ONE ENTRY PER DATE:
  Entries are keyed by date. SaveEntry on a date that already has an entry
  replaces it and keeps its ID.

SETTINGS:
  The partial document the user saved is stored as is. LoadSettings
  resolves it through factory.ResolveSettings on every call, so changing a
  default in ccnl changes every unset field.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: In-memory for testing

SEE ALSO:
  - engine/sources.go: The read-side contracts
  - tracker/service.go: The consumer
*/
package store

import (
	"context"
	"errors"

	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Holiday is a user-defined public holiday, on top of the national ones.
// A recurring holiday repeats every year on the same month and day.
type Holiday struct {
	ID        string           `json:"id"`
	Date      engine.TimePoint `json:"date"`
	Name      string           `json:"name"`
	Recurring bool             `json:"recurring"`
}

// StandbyDay is one date of the standby calendar.
type StandbyDay struct {
	Date engine.TimePoint `json:"date"`
	Note string           `json:"note,omitempty"`
}

// Repository handles persistence of the application state.
type Repository interface {
	engine.EntrySource
	engine.StandbySource
	engine.SettingsSource

	// GetEntry returns ErrNotFound when the date has no entry.
	GetEntry(ctx context.Context, date engine.TimePoint) (*engine.WorkDayEntry, error)
	// SaveEntry inserts or replaces the entry of entry.Date and sets its ID.
	SaveEntry(ctx context.Context, entry *engine.WorkDayEntry) error
	DeleteEntry(ctx context.Context, date engine.TimePoint) error

	SetStandby(ctx context.Context, day StandbyDay) error
	ClearStandby(ctx context.Context, date engine.TimePoint) error
	ListStandby(ctx context.Context, from, to engine.TimePoint) ([]StandbyDay, error)

	SaveHoliday(ctx context.Context, h *Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context) ([]Holiday, error)
	// HolidaysInYear returns the holidays of a year, recurring ones moved
	// into that year.
	HolidaysInYear(ctx context.Context, year int) ([]Holiday, error)

	SaveSettings(ctx context.Context, sj factory.SettingsJSON) error
	// RawSettings returns the partial document as saved.
	RawSettings(ctx context.Context) (factory.SettingsJSON, error)

	// Reset clears entries, standby days, holidays and settings.
	Reset(ctx context.Context) error
	Close() error
}

// HolidaySet converts holiday records into an engine calendar.
func HolidaySet(holidays []Holiday) engine.HolidaySet {
	dates := make([]engine.TimePoint, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return engine.NewHolidaySet(dates...)
}

// InYear moves a recurring holiday into year. Non-recurring holidays of
// other years report false.
func (h Holiday) InYear(year int) (Holiday, bool) {
	if h.Recurring {
		h.Date = engine.NewTimePoint(year, h.Date.Month(), h.Date.Day())
		return h, true
	}
	return h, h.Date.Year() == year
}

// IsNotFound reports a missing entry, standby day or holiday.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError reports errors caused by the request rather than the store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound)
}
