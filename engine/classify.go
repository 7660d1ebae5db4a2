package engine

// =============================================================================
// DAY CLASSIFIER - One tagged variant per date, consumed everywhere downstream
// =============================================================================

// DayKind is the pay regime of a day.
type DayKind string

const (
	KindOrdinary DayKind = "ordinary"
	KindStandby  DayKind = "standby"
	KindFixed    DayKind = "fixed"
)

// Classification is the resolved view of a date. Downstream code switches on
// Kind and never re-inspects the raw entry flags.
type Classification struct {
	Date       TimePoint `json:"date"`
	Kind       DayKind   `json:"kind"`
	FixedKind  FixedKind `json:"fixed_kind,omitempty"`
	IsSaturday bool      `json:"is_saturday"`
	IsSunday   bool      `json:"is_sunday"`
	IsHoliday  bool      `json:"is_holiday"`
	// Synthetic marks a standby day that exists only in the standby calendar.
	Synthetic bool `json:"synthetic,omitempty"`
	// Conflict is set when the entry carried more than one day-type flag.
	Conflict bool `json:"conflict,omitempty"`
}

// IsSpecial reports Saturday, Sunday or public holiday.
func (c Classification) IsSpecial() bool { return c.IsSaturday || c.IsSunday || c.IsHoliday }

// IsFestive reports Sunday or public holiday. A holiday falling on a
// Saturday is festive, not Saturday.
func (c Classification) IsFestive() bool { return c.IsSunday || c.IsHoliday }

// Classify resolves an entry (possibly nil) and the calendar context of its
// date. Precedence: Fixed > Standby (entry or calendar) > Ordinary. A nil
// entry on a calendar standby date yields a synthetic standby day.
func Classify(date TimePoint, entry *WorkDayEntry, calendarStandby bool, holidays HolidayCalendar) Classification {
	if entry != nil && !entry.Date.IsZero() {
		date = entry.Date
	}
	if holidays == nil {
		holidays = NoHolidays{}
	}
	cls := Classification{
		Date:       date,
		Kind:       KindOrdinary,
		IsSaturday: date.IsSaturday(),
		IsSunday:   date.IsSunday(),
		IsHoliday:  holidays.IsHoliday(date),
	}

	switch {
	case entry == nil:
		if calendarStandby {
			cls.Kind = KindStandby
			cls.Synthetic = true
		}
	case entry.Fixed:
		cls.Kind = KindFixed
		cls.FixedKind = entry.FixedKind
		cls.Conflict = entry.Standby
	case entry.Standby || calendarStandby:
		cls.Kind = KindStandby
	}
	return cls
}
