package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CALCULATOR - Settings and calendar bound once, reused across goroutines
// =============================================================================

// Calculator holds a private copy of the settings and the holiday calendar.
// All methods are read-only and safe for concurrent use.
type Calculator struct {
	settings Settings
	holidays HolidayCalendar
}

// NewCalculator copies s. A nil calendar means no public holidays.
func NewCalculator(s *Settings, holidays HolidayCalendar) (*Calculator, error) {
	if s == nil {
		return nil, ErrSettingsRequired
	}
	if holidays == nil {
		holidays = NoHolidays{}
	}
	own := *s
	own.NetPay.Brackets = append([]TaxBracket(nil), s.NetPay.Brackets...)
	return &Calculator{settings: own, holidays: holidays}, nil
}

// Settings returns a copy of the bound settings.
func (c *Calculator) Settings() Settings {
	s := c.settings
	s.NetPay.Brackets = append([]TaxBracket(nil), c.settings.NetPay.Brackets...)
	return s
}

func (c *Calculator) Holidays() HolidayCalendar { return c.holidays }

// Classify resolves a date against the bound calendar.
func (c *Calculator) Classify(date TimePoint, entry *WorkDayEntry, calendarStandby bool) Classification {
	return Classify(date, entry, calendarStandby, c.holidays)
}

// Day computes a single date. entry may be nil for a standby-only date.
func (c *Calculator) Day(date TimePoint, entry *WorkDayEntry, calendarStandby bool) DayResult {
	return computeDay(dayInput{Date: date, Entry: entry, Standby: calendarStandby}, c.settings, c.holidays)
}

// Month computes a calendar month. Days are computed concurrently and
// folded in date order, so the result equals Aggregate for the same inputs.
func (c *Calculator) Month(year int, month time.Month, entries []WorkDayEntry, standbyDates []TimePoint) MonthlyAggregate {
	inputs := monthInputs(year, month, entries, standbyDates)
	return fold(year, month, c.computeDays(inputs))
}

// ComputeDays computes every entry independently, one goroutine per entry.
// The result slice is index-aligned with entries.
func (c *Calculator) ComputeDays(entries []WorkDayEntry, standbyDates []TimePoint) []DayResult {
	standby := make(map[string]bool, len(standbyDates))
	for _, d := range standbyDates {
		standby[d.Key()] = true
	}
	inputs := make([]dayInput, len(entries))
	for i := range entries {
		inputs[i] = dayInput{Date: entries[i].Date, Entry: &entries[i], Standby: standby[entries[i].Date.Key()]}
	}
	return c.computeDays(inputs)
}

func (c *Calculator) computeDays(inputs []dayInput) []DayResult {
	results := make([]DayResult, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = computeDay(inputs[i], c.settings, c.holidays)
		}(i)
	}
	wg.Wait()
	return results
}

// Net estimates net pay from gross with the bound net pay settings.
func (c *Calculator) Net(gross decimal.Decimal) NetPay {
	return EstimateNet(gross, c.settings.NetPay)
}
