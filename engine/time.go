package engine

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar day the engine reasons about
// =============================================================================

// TimePoint is a calendar date in UTC. Clock times within the day are kept
// as "HH:MM" strings on the entry and resolved by the interval calculator.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

// DateLayout is the wire and storage format of a TimePoint.
const DateLayout = "2006-01-02"

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSaturday() bool      { return tp.Weekday() == time.Saturday }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) String() string        { return tp.Time.Format(DateLayout) }

// Key returns a comparable map key for the day.
func (tp TimePoint) Key() string { return tp.String() }

// MarshalText encodes the date as "2006-01-02".
func (tp TimePoint) MarshalText() ([]byte, error) { return []byte(tp.String()), nil }

// UnmarshalText decodes a "2006-01-02" date.
func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayCalendar answers whether a date is a public holiday.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// NoHolidays is a calendar without holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool { return false }

// HolidayFunc adapts a function to HolidayCalendar.
type HolidayFunc func(date TimePoint) bool

func (f HolidayFunc) IsHoliday(date TimePoint) bool { return f(date) }

// HolidaySet is a fixed set of holiday dates.
type HolidaySet map[string]bool

// NewHolidaySet builds a set from explicit dates.
func NewHolidaySet(dates ...TimePoint) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d.Key()] = true
	}
	return set
}

func (s HolidaySet) IsHoliday(date TimePoint) bool { return s[date.Key()] }

// Holidays is a composite calendar: a date is a holiday if any member says so.
type Holidays []HolidayCalendar

func (hs Holidays) IsHoliday(date TimePoint) bool {
	for _, h := range hs {
		if h != nil && h.IsHoliday(date) {
			return true
		}
	}
	return false
}
