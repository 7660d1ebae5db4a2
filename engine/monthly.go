/*
monthly.go - Monthly aggregator

PURPOSE:
  Folds the DailyBreakdowns of a calendar month into a MonthlyAggregate,
  deriving the analytics in the same pass.

WHICH DAYS COUNT:
  For each date of the month:
    entry present              -> classify and compute the entry
    no entry, standby flagged  -> synthetic standby day (indemnity only)
    neither                    -> skipped

  An entry always wins over a calendar standby flag for the same date, so
  the indemnity is never credited twice. Entries outside the month are
  ignored; if two entries share a date, the first one is used.

FOLD:
  DailyBreakdown.Add is commutative and associative. The result does not
  depend on the order days were computed in, which is what lets
  Calculator.Month compute days concurrently.

ANALYTICS:
  DailyHours / DailyEarnings   one slot per day of month (index = day-1)
  Worked* counters             entry days with hours > 0 on that day type
  Intensity                    light < 6h <= normal < 9h <= intense <= 12h < extreme
  LongestStreak                longest run of consecutive dates with an entry
  AverageStart                 mean first-shift start, "HH:MM"
  StandbyInterventions         interventions with a complete first shift
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	lightLimit   = decimal.NewFromInt(6)
	normalLimit  = decimal.NewFromInt(9)
	intenseLimit = decimal.NewFromInt(12)
)

// DayResult is one computed date of a month.
type DayResult struct {
	Date           TimePoint      `json:"date"`
	Classification Classification `json:"classification"`
	Breakdown      DailyBreakdown `json:"breakdown"`
	HasEntry       bool           `json:"has_entry"`
	// FirstStart is the first shift start, empty when absent or malformed.
	FirstStart string  `json:"first_start,omitempty"`
	Issues     []error `json:"-"`
}

// MonthlyAggregate is built fresh for every query and never mutated.
type MonthlyAggregate struct {
	Year  int         `json:"year"`
	Month time.Month  `json:"month"`
	Days  []DayResult `json:"days"`

	Totals          DailyBreakdown  `json:"totals"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TaxableEarnings decimal.Decimal `json:"taxable_earnings"`
	TotalHours      decimal.Decimal `json:"total_hours"`

	Analytics Analytics `json:"analytics"`
}

type Analytics struct {
	DailyHours    []decimal.Decimal `json:"daily_hours"`
	DailyEarnings []decimal.Decimal `json:"daily_earnings"`

	WorkedDays      int `json:"worked_days"`
	WorkedSaturdays int `json:"worked_saturdays"`
	WorkedSundays   int `json:"worked_sundays"`
	WorkedHolidays  int `json:"worked_holidays"`
	FixedDays       int `json:"fixed_days"`
	StandbyDays     int `json:"standby_days"`

	Intensity     Intensity `json:"intensity"`
	LongestStreak int       `json:"longest_streak"`

	AverageStartMinutes *int   `json:"average_start_minutes,omitempty"`
	AverageStart        string `json:"average_start,omitempty"`

	StandbyInterventions int `json:"standby_interventions"`
}

// Intensity is a histogram of worked days by total hours.
type Intensity struct {
	Light   int `json:"light"`
	Normal  int `json:"normal"`
	Intense int `json:"intense"`
	Extreme int `json:"extreme"`
}

func (in *Intensity) record(hours decimal.Decimal) {
	switch {
	case hours.LessThan(lightLimit):
		in.Light++
	case hours.LessThan(normalLimit):
		in.Normal++
	case hours.LessThanOrEqual(intenseLimit):
		in.Intense++
	default:
		in.Extreme++
	}
}

// dayInput is one date to compute.
type dayInput struct {
	Date    TimePoint
	Entry   *WorkDayEntry
	Standby bool
}

// Aggregate computes a month sequentially. It is a pure function of its
// arguments; calling it twice yields identical results.
func Aggregate(year int, month time.Month, entries []WorkDayEntry, standbyDates []TimePoint, s Settings, holidays HolidayCalendar) MonthlyAggregate {
	inputs := monthInputs(year, month, entries, standbyDates)
	results := make([]DayResult, len(inputs))
	for i, in := range inputs {
		results[i] = computeDay(in, s, holidays)
	}
	return fold(year, month, results)
}

// monthInputs selects the dates of the month that have an entry or a
// standby flag, in date order.
func monthInputs(year int, month time.Month, entries []WorkDayEntry, standbyDates []TimePoint) []dayInput {
	period := MonthPeriod(year, month)

	byDate := make(map[string]*WorkDayEntry, len(entries))
	for i := range entries {
		e := &entries[i]
		if !period.Contains(e.Date) {
			continue
		}
		if _, dup := byDate[e.Date.Key()]; dup {
			continue
		}
		byDate[e.Date.Key()] = e
	}
	standby := make(map[string]bool, len(standbyDates))
	for _, d := range standbyDates {
		standby[d.Key()] = true
	}

	var inputs []dayInput
	for _, day := range period.Days() {
		entry := byDate[day.Key()]
		flagged := standby[day.Key()]
		if entry == nil && !flagged {
			continue
		}
		inputs = append(inputs, dayInput{Date: day, Entry: entry, Standby: flagged})
	}
	return inputs
}

func computeDay(in dayInput, s Settings, holidays HolidayCalendar) DayResult {
	cls := Classify(in.Date, in.Entry, in.Standby, holidays)
	res := DayResult{
		Date:           in.Date,
		Classification: cls,
		Breakdown:      ComputeDaily(in.Entry, cls, s),
		HasEntry:       in.Entry != nil,
		Issues:         Inspect(in.Entry, cls),
	}
	if in.Entry != nil {
		if start, ok := in.Entry.FirstStart(); ok {
			res.FirstStart = start.String()
		}
	}
	return res
}

// fold sums the day results (expected in date order) and derives analytics.
func fold(year int, month time.Month, days []DayResult) MonthlyAggregate {
	n := EndOfMonth(year, month).Day()
	agg := MonthlyAggregate{
		Year:  year,
		Month: month,
		Days:  days,
		Analytics: Analytics{
			DailyHours:    zeros(n),
			DailyEarnings: zeros(n),
		},
	}
	if agg.Days == nil {
		agg.Days = []DayResult{}
	}

	a := &agg.Analytics
	streak, startSum, startCount := 0, 0, 0
	var prev TimePoint
	for _, d := range days {
		agg.Totals = agg.Totals.Add(d.Breakdown)

		hours := d.Breakdown.TotalHours()
		idx := d.Date.Day() - 1
		a.DailyHours[idx] = hours
		a.DailyEarnings[idx] = d.Breakdown.TotalEarnings
		a.StandbyInterventions += d.Breakdown.Standby.Interventions

		switch d.Classification.Kind {
		case KindFixed:
			a.FixedDays++
		case KindStandby:
			a.StandbyDays++
		}

		if !d.HasEntry {
			streak = 0
			continue
		}
		if !prev.IsZero() && prev.AddDays(1).Equal(d.Date) && streak > 0 {
			streak++
		} else {
			streak = 1
		}
		prev = d.Date
		a.LongestStreak = max(a.LongestStreak, streak)

		if start, err := ParseClock(d.FirstStart); err == nil {
			startSum += int(start)
			startCount++
		}

		if hours.IsPositive() {
			a.WorkedDays++
			a.Intensity.record(hours)
			if d.Classification.IsSaturday {
				a.WorkedSaturdays++
			}
			if d.Classification.IsSunday {
				a.WorkedSundays++
			}
			if d.Classification.IsHoliday {
				a.WorkedHolidays++
			}
		}
	}

	if startCount > 0 {
		avg := (startSum + startCount/2) / startCount
		a.AverageStartMinutes = &avg
		a.AverageStart = Clock(avg).String()
	}

	agg.TotalEarnings = agg.Totals.TotalEarnings
	agg.TaxableEarnings = agg.Totals.TaxableEarnings()
	agg.TotalHours = agg.Totals.TotalHours()
	return agg
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
