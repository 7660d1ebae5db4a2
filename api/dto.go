/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication that are not already
  engine or tracker types. Computed results (months, days, year summaries,
  net estimates) are returned as the tracker reports directly.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Entries:   EntryRequest, SaveEntryResponse
  Standby:   StandbyRequest, StandbyDTO
  Holidays:  HolidayRequest, HolidayDTO
  Net pay:   NetRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - tracker/service.go: Report types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/store"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// EntryRequest is the body of PUT /api/entries/{date}. The date comes from
// the path.
type EntryRequest struct {
	Shifts        []engine.Interval     `json:"shifts"`
	Travel        engine.TravelLegs     `json:"travel"`
	Interventions []engine.Intervention `json:"interventions"`

	Fixed     bool             `json:"fixed"`
	FixedKind engine.FixedKind `json:"fixed_kind"`
	Standby   bool             `json:"standby"`

	FixedEarnings *decimal.Decimal `json:"fixed_earnings"`

	Lunch  engine.MealChoice `json:"lunch"`
	Dinner engine.MealChoice `json:"dinner"`

	TravelAllowancePercent  *decimal.Decimal `json:"travel_allowance_percent"`
	TravelAllowanceOverride bool             `json:"travel_allowance_override"`

	Notes string `json:"notes"`
}

func (r EntryRequest) toEntry(date engine.TimePoint) *engine.WorkDayEntry {
	return &engine.WorkDayEntry{
		Date:                    date,
		Shifts:                  r.Shifts,
		Travel:                  r.Travel,
		Interventions:           r.Interventions,
		Fixed:                   r.Fixed,
		FixedKind:               r.FixedKind,
		Standby:                 r.Standby,
		FixedEarnings:           r.FixedEarnings,
		Lunch:                   r.Lunch,
		Dinner:                  r.Dinner,
		TravelAllowancePercent:  r.TravelAllowancePercent,
		TravelAllowanceOverride: r.TravelAllowanceOverride,
		Notes:                   r.Notes,
	}
}

// SaveEntryResponse returns the stored entry and the input warnings.
type SaveEntryResponse struct {
	Entry    *engine.WorkDayEntry `json:"entry"`
	Warnings []string             `json:"warnings,omitempty"`
}

// StandbyRequest flags one date, or every date of [from, to].
type StandbyRequest struct {
	Date string `json:"date,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Note string `json:"note,omitempty"`
}

type StandbyDTO struct {
	Date string `json:"date"`
	Note string `json:"note,omitempty"`
}

func toStandbyDTO(d store.StandbyDay) StandbyDTO {
	return StandbyDTO{Date: d.Date.String(), Note: d.Note}
}

type HolidayRequest struct {
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

type HolidayDTO struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
	// National marks holidays of the built-in calendar; they cannot be deleted.
	National bool `json:"national,omitempty"`
}

func toHolidayDTO(h store.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, Recurring: h.Recurring}
}

// NetRequest is the body of POST /api/net: an ad-hoc estimate for a gross
// amount with the stored settings, optionally overriding the method.
type NetRequest struct {
	Gross      decimal.Decimal  `json:"gross"`
	Method     string           `json:"method,omitempty"`
	CustomRate *decimal.Decimal `json:"custom_rate,omitempty"`
}
