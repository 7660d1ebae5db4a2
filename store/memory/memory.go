// Package memory provides an in-memory store.Repository.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	entries  map[string]engine.WorkDayEntry
	standby  map[string]store.StandbyDay
	holidays map[string]store.Holiday
	settings factory.SettingsJSON
}

var _ store.Repository = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		entries:  make(map[string]engine.WorkDayEntry),
		standby:  make(map[string]store.StandbyDay),
		holidays: make(map[string]store.Holiday),
	}
}

func (m *Memory) Close() error { return nil }

// EntriesForMonth returns the entries of a month in date order.
func (m *Memory) EntriesForMonth(_ context.Context, year int, month time.Month) ([]engine.WorkDayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := engine.MonthPeriod(year, month)
	var out []engine.WorkDayEntry
	for _, e := range m.entries {
		if period.Contains(e.Date) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) GetEntry(_ context.Context, date engine.TimePoint) (*engine.WorkDayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[date.Key()]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", date, store.ErrNotFound)
	}
	c := cloneEntry(e)
	return &c, nil
}

// SaveEntry inserts or replaces the entry of a date, keeping the stored ID.
func (m *Memory) SaveEntry(_ context.Context, entry *engine.WorkDayEntry) error {
	if entry == nil || entry.Date.IsZero() {
		return fmt.Errorf("entry without date: %w", store.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[entry.Date.Key()]; ok {
		entry.ID = existing.ID
	} else if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	m.entries[entry.Date.Key()] = cloneEntry(*entry)
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, date engine.TimePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[date.Key()]; !ok {
		return fmt.Errorf("entry %s: %w", date, store.ErrNotFound)
	}
	delete(m.entries, date.Key())
	return nil
}

// StandbyDates returns the flagged dates in [from, to].
func (m *Memory) StandbyDates(ctx context.Context, from, to engine.TimePoint) ([]engine.TimePoint, error) {
	days, err := m.ListStandby(ctx, from, to)
	if err != nil {
		return nil, err
	}
	dates := make([]engine.TimePoint, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates, nil
}

func (m *Memory) ListStandby(_ context.Context, from, to engine.TimePoint) ([]store.StandbyDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := engine.Period{Start: from, End: to}
	var out []store.StandbyDay
	for _, d := range m.standby {
		if period.Contains(d.Date) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) SetStandby(_ context.Context, day store.StandbyDay) error {
	if day.Date.IsZero() {
		return fmt.Errorf("standby day without date: %w", store.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standby[day.Date.Key()] = day
	return nil
}

func (m *Memory) ClearStandby(_ context.Context, date engine.TimePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.standby[date.Key()]; !ok {
		return fmt.Errorf("standby day %s: %w", date, store.ErrNotFound)
	}
	delete(m.standby, date.Key())
	return nil
}

// SaveHoliday stores a holiday. A holiday with the same date and name is
// updated in place and keeps its ID.
func (m *Memory) SaveHoliday(_ context.Context, h *store.Holiday) error {
	if h == nil || h.Date.IsZero() || strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("holiday needs a date and a name: %w", store.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.holidays {
		if existing.Date.Equal(h.Date) && existing.Name == h.Name {
			h.ID = id
		}
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	m.holidays[h.ID] = *h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return fmt.Errorf("holiday %s: %w", id, store.ErrNotFound)
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context) ([]store.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) HolidaysInYear(ctx context.Context, year int) ([]store.Holiday, error) {
	all, err := m.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	var out []store.Holiday
	for _, h := range all {
		if moved, ok := h.InYear(year); ok {
			out = append(out, moved)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// IsHoliday checks if a date is a user holiday.
func (m *Memory) IsHoliday(date engine.TimePoint) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.holidays {
		if moved, ok := h.InYear(date.Year()); ok && moved.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (m *Memory) SaveSettings(_ context.Context, sj factory.SettingsJSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = sj
	return nil
}

func (m *Memory) RawSettings(_ context.Context) (factory.SettingsJSON, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Memory) LoadSettings(ctx context.Context) (engine.Settings, error) {
	sj, err := m.RawSettings(ctx)
	if err != nil {
		return engine.Settings{}, err
	}
	return factory.ResolveSettings(sj)
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]engine.WorkDayEntry)
	m.standby = make(map[string]store.StandbyDay)
	m.holidays = make(map[string]store.Holiday)
	m.settings = factory.SettingsJSON{}
	return nil
}

// cloneEntry copies the slices so callers cannot mutate stored entries.
func cloneEntry(e engine.WorkDayEntry) engine.WorkDayEntry {
	e.Shifts = append([]engine.Interval(nil), e.Shifts...)
	ivs := make([]engine.Intervention, len(e.Interventions))
	for i, iv := range e.Interventions {
		iv.Shifts = append([]engine.Interval(nil), iv.Shifts...)
		ivs[i] = iv
	}
	if len(e.Interventions) == 0 {
		ivs = nil
	}
	e.Interventions = ivs
	return e
}
