package engine

import "github.com/shopspring/decimal"

// =============================================================================
// WORK DAY ENTRY - One raw record per calendar date
// =============================================================================

// WorkDayEntry is what the user recorded for a single date.
type WorkDayEntry struct {
	ID            string         `json:"id,omitempty"`
	Date          TimePoint      `json:"date"`
	Shifts        []Interval     `json:"shifts,omitempty"`
	Travel        TravelLegs     `json:"travel"`
	Interventions []Intervention `json:"interventions,omitempty"`

	// Day-type flags. More than one may be set; Fixed wins, then Standby.
	Fixed     bool      `json:"fixed,omitempty"`
	FixedKind FixedKind `json:"fixed_kind,omitempty"`
	Standby   bool      `json:"standby,omitempty"`

	// FixedEarnings overrides the daily rate paid on a fixed day.
	FixedEarnings *decimal.Decimal `json:"fixed_earnings,omitempty"`

	Lunch  MealChoice `json:"lunch"`
	Dinner MealChoice `json:"dinner"`

	// TravelAllowancePercent scales the travel allowance; nil means 1.0.
	TravelAllowancePercent *decimal.Decimal `json:"travel_allowance_percent,omitempty"`
	// TravelAllowanceOverride forces the allowance on Saturdays, Sundays and holidays.
	TravelAllowanceOverride bool `json:"travel_allowance_override,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// TravelLegs are the two travel intervals of a day or an intervention.
type TravelLegs struct {
	Outbound Interval `json:"outbound"`
	Return   Interval `json:"return"`
}

func (t TravelLegs) Minutes() int { return t.Outbound.Minutes() + t.Return.Minutes() }

func (t TravelLegs) legs() []Interval { return []Interval{t.Outbound, t.Return} }

// Intervention is one callout during a standby day.
type Intervention struct {
	Shifts []Interval `json:"shifts,omitempty"`
	Travel TravelLegs `json:"travel"`
}

// Counts reports whether the intervention has at least a first shift with
// both start and end; only those are counted as interventions.
func (iv Intervention) Counts() bool {
	return len(iv.Shifts) > 0 && iv.Shifts[0].IsSet()
}

// MealChoice records how a meal was reimbursed.
type MealChoice struct {
	Voucher bool `json:"voucher,omitempty"`
	Cash    bool `json:"cash,omitempty"`
	// CashAmount is an explicit cash reimbursement that overrides settings.
	CashAmount *decimal.Decimal `json:"cash_amount,omitempty"`
}

// FixedKind names the reason a day is paid at the flat rate.
type FixedKind string

const (
	FixedVacation FixedKind = "vacation"
	FixedSick     FixedKind = "sick"
	FixedPermit   FixedKind = "permit"
	FixedRest     FixedKind = "rest"
	FixedHoliday  FixedKind = "holiday"
)

// WorkMinutes is the sum of all regular shifts.
func (e *WorkDayEntry) WorkMinutes() int { return TotalMinutes(e.Shifts) }

// TravelMinutes is the sum of the regular travel legs.
func (e *WorkDayEntry) TravelMinutes() int { return e.Travel.Minutes() }

// FirstStart returns the start of the first shift when it parses.
func (e *WorkDayEntry) FirstStart() (Clock, bool) {
	if len(e.Shifts) == 0 {
		return 0, false
	}
	c, err := ParseClock(e.Shifts[0].Start)
	if err != nil {
		return 0, false
	}
	return c, true
}

// CountedInterventions returns the number of interventions that count.
func (e *WorkDayEntry) CountedInterventions() int {
	n := 0
	for _, iv := range e.Interventions {
		if iv.Counts() {
			n++
		}
	}
	return n
}
