package engine

import (
	"context"
	"time"
)

// =============================================================================
// SOURCES - What a host must provide to run the engine
// =============================================================================
//
// The engine does not load anything itself. Hosts implement these against
// their storage (see store/sqlite and store/memory) and pass the loaded
// values to Aggregate or a Calculator.

// EntrySource returns the recorded entries of a month, in any order.
type EntrySource interface {
	EntriesForMonth(ctx context.Context, year int, month time.Month) ([]WorkDayEntry, error)
}

// StandbySource returns the dates flagged in the standby calendar within
// [from, to], both inclusive.
type StandbySource interface {
	StandbyDates(ctx context.Context, from, to TimePoint) ([]TimePoint, error)
}

// SettingsSource returns the current fully resolved settings.
type SettingsSource interface {
	LoadSettings(ctx context.Context) (Settings, error)
}
