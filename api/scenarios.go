/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built months that populate the repository with realistic
	entries, standby days, holidays and settings. Each scenario shows a
	part of the payroll rules at work.

AVAILABLE SCENARIOS:

	office-month:      Weekdays 08:30-17:30 with a lunch break and vouchers
	field-technician:  Travel legs, travel allowance, dinners away
	on-call-week:      A standby week with night interventions
	overtime-heavy:    Long days, a worked Saturday and a worked holiday

HOW SCENARIOS WORK:
 1. Reset the repository
 2. Save the scenario settings
 3. Save entries, standby days and holidays into the requested month

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "on-call-week", "year": 2025, "month": 3}

NOTE:

	Scenarios reset the repository. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - cmd/workhours/report.go: The demo command
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "office-month",
		Name:        "Office Month",
		Description: "Every working day 08:30-17:30 with an hour for lunch and a meal voucher",
	},
	{
		ID:          "field-technician",
		Name:        "Field Technician",
		Description: "Customer sites reached by car: travel legs, travel allowance and dinners away",
	},
	{
		ID:          "on-call-week",
		Name:        "On-Call Week",
		Description: "Seven standby days, two of them with night interventions",
	},
	{
		ID:          "overtime-heavy",
		Name:        "Overtime Heavy",
		Description: "Ten hour days, a late evening, a worked Saturday and a worked holiday",
	},
}

// Scenarios lists the available scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// SeedScenario resets repo and loads a scenario into a month. Working days
// skip the weekend and the national holidays.
func SeedScenario(ctx context.Context, repo store.Repository, national engine.HolidayCalendar, id string, year int, month time.Month) error {
	if national == nil {
		national = engine.NoHolidays{}
	}
	var loader func(context.Context, *scenarioMonth) error
	switch id {
	case "office-month":
		loader = loadOfficeMonth
	case "field-technician":
		loader = loadFieldTechnician
	case "on-call-week":
		loader = loadOnCallWeek
	case "overtime-heavy":
		loader = loadOvertimeHeavy
	default:
		return fmt.Errorf("unknown scenario %q: %w", id, store.ErrInvalidInput)
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("invalid month %d: %w", int(month), store.ErrInvalidInput)
	}

	if err := repo.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset repository: %w", err)
	}
	sm := &scenarioMonth{repo: repo, national: national, period: engine.MonthPeriod(year, month)}
	return loader(ctx, sm)
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario into a month, the current one by
// default.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
		Year       int    `json:"year"`
		Month      int    `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	now := time.Now()
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := SeedScenario(r.Context(), h.Repo, h.National, req.ScenarioID, req.Year, time.Month(req.Month)); err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Log.WithField("scenario", req.ScenarioID).Info("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"year":     req.Year,
		"month":    req.Month,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type scenarioMonth struct {
	repo     store.Repository
	national engine.HolidayCalendar
	period   engine.Period
}

func (sm *scenarioMonth) workingDays() []engine.TimePoint {
	var days []engine.TimePoint
	for _, d := range sm.period.Days() {
		if d.IsSaturday() || d.IsSunday() || sm.national.IsHoliday(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

func (sm *scenarioMonth) settings(ctx context.Context, s engine.Settings) error {
	return sm.repo.SaveSettings(ctx, factory.ToJSON(s))
}

func (sm *scenarioMonth) save(ctx context.Context, entry *engine.WorkDayEntry) error {
	if err := sm.repo.SaveEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save entry %s: %w", entry.Date, err)
	}
	return nil
}

func shifts(pairs ...string) []engine.Interval {
	out := make([]engine.Interval, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, engine.Interval{Start: pairs[i], End: pairs[i+1]})
	}
	return out
}

func loadOfficeMonth(ctx context.Context, sm *scenarioMonth) error {
	if err := sm.settings(ctx, ccnl.DefaultSettings()); err != nil {
		return err
	}
	for _, d := range sm.workingDays() {
		entry := &engine.WorkDayEntry{
			Date:   d,
			Shifts: shifts("08:30", "12:30", "13:30", "17:30"),
			Lunch:  engine.MealChoice{Voucher: true},
		}
		if err := sm.save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func loadFieldTechnician(ctx context.Context, sm *scenarioMonth) error {
	s := ccnl.DefaultSettings()
	s.TravelAllowance = engine.TravelAllowanceSettings{
		Enabled:     true,
		DailyAmount: decimal.RequireFromString("46.48"),
		Policy:      engine.AllowanceWithTravel,
	}
	s.Meals.Dinner.CashAmount = decimal.RequireFromString("12")
	if err := sm.settings(ctx, s); err != nil {
		return err
	}

	for i, d := range sm.workingDays() {
		entry := &engine.WorkDayEntry{
			Date:   d,
			Shifts: shifts("08:00", "12:00", "13:00", "17:00"),
			Lunch:  engine.MealChoice{Voucher: true},
		}
		// Every other day is a customer site.
		if i%2 == 0 {
			entry.Travel = engine.TravelLegs{
				Outbound: engine.Interval{Start: "06:30", End: "08:00"},
				Return:   engine.Interval{Start: "17:00", End: "19:00"},
			}
			entry.Dinner = engine.MealChoice{Cash: true}
			entry.Notes = "customer site"
		}
		if err := sm.save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func loadOnCallWeek(ctx context.Context, sm *scenarioMonth) error {
	if err := sm.settings(ctx, ccnl.DefaultSettings()); err != nil {
		return err
	}

	// The standby week starts on the first Monday of the month.
	start := sm.period.Start
	for start.Weekday() != time.Monday {
		start = start.AddDays(1)
	}
	for i := 0; i < 7; i++ {
		day := store.StandbyDay{Date: start.AddDays(i), Note: "on-call rotation"}
		if err := sm.repo.SetStandby(ctx, day); err != nil {
			return err
		}
	}

	for _, d := range sm.workingDays() {
		entry := &engine.WorkDayEntry{Date: d, Shifts: shifts("08:00", "12:00", "13:00", "17:00")}
		switch {
		case d.Equal(start.AddDays(1)):
			entry.Interventions = []engine.Intervention{{
				Shifts: shifts("22:30", "01:00"),
				Travel: engine.TravelLegs{Outbound: engine.Interval{Start: "22:00", End: "22:30"}},
			}}
		case d.Equal(start.AddDays(3)):
			entry.Interventions = []engine.Intervention{{Shifts: shifts("20:15", "21:45")}}
		}
		if err := sm.save(ctx, entry); err != nil {
			return err
		}
	}

	// A Saturday call-out without regular work.
	saturday := &engine.WorkDayEntry{
		Date:          start.AddDays(5),
		Standby:       true,
		Interventions: []engine.Intervention{{Shifts: shifts("10:00", "13:00")}},
	}
	return sm.save(ctx, saturday)
}

func loadOvertimeHeavy(ctx context.Context, sm *scenarioMonth) error {
	if err := sm.settings(ctx, ccnl.DefaultSettings()); err != nil {
		return err
	}

	days := sm.workingDays()
	for i, d := range days {
		entry := &engine.WorkDayEntry{Date: d, Shifts: shifts("07:00", "12:00", "12:30", "17:30")}
		if i == len(days)-1 {
			entry.Shifts = shifts("09:00", "13:00", "14:00", "23:00")
			entry.Notes = "release night"
		}
		if err := sm.save(ctx, entry); err != nil {
			return err
		}
	}

	for _, d := range sm.period.Days() {
		if d.IsSaturday() {
			if err := sm.save(ctx, &engine.WorkDayEntry{Date: d, Shifts: shifts("08:00", "13:00")}); err != nil {
				return err
			}
			break
		}
	}

	// A company holiday on the second working day, worked anyway.
	if len(days) > 1 {
		holiday := &store.Holiday{Date: days[1], Name: "Company anniversary"}
		if err := sm.repo.SaveHoliday(ctx, holiday); err != nil {
			return err
		}
	}
	return nil
}
