package ccnl

import (
	"sort"
	"time"

	"github.com/warp/workhours/engine"
)

// =============================================================================
// ITALIAN HOLIDAYS - National public holidays, Easter computed per year
// =============================================================================

// Holiday is a named public holiday on a concrete date.
type Holiday struct {
	Date engine.TimePoint `json:"date"`
	Name string           `json:"name"`
}

// MonthDay is a recurring day of the year.
type MonthDay struct {
	Month time.Month `json:"month" toml:"month"`
	Day   int        `json:"day" toml:"day"`
}

type fixedHoliday struct {
	MonthDay
	name string
	// since is the first year the holiday applies, 0 for always.
	since int
}

var fixedHolidays = []fixedHoliday{
	{MonthDay{time.January, 1}, "Capodanno", 0},
	{MonthDay{time.January, 6}, "Epifania", 0},
	{MonthDay{time.April, 25}, "Festa della Liberazione", 0},
	{MonthDay{time.May, 1}, "Festa del Lavoro", 0},
	{MonthDay{time.June, 2}, "Festa della Repubblica", 0},
	{MonthDay{time.August, 15}, "Ferragosto", 0},
	{MonthDay{time.October, 4}, "San Francesco d'Assisi", 2026},
	{MonthDay{time.November, 1}, "Ognissanti", 0},
	{MonthDay{time.December, 8}, "Immacolata Concezione", 0},
	{MonthDay{time.December, 25}, "Natale", 0},
	{MonthDay{time.December, 26}, "Santo Stefano", 0},
}

// ItalianHolidays is the national calendar. Patron, when set, adds the local
// patron saint day.
type ItalianHolidays struct {
	Patron *MonthDay
}

func (h ItalianHolidays) IsHoliday(date engine.TimePoint) bool {
	for _, f := range fixedHolidays {
		if f.Month == date.Month() && f.Day == date.Day() && date.Year() >= f.since {
			return true
		}
	}
	if h.Patron != nil && h.Patron.Month == date.Month() && h.Patron.Day == date.Day() {
		return true
	}
	easter := Easter(date.Year())
	return date.Equal(easter) || date.Equal(easter.AddDays(1))
}

// Year lists the holidays of a year in date order.
func (h ItalianHolidays) Year(year int) []Holiday {
	var out []Holiday
	for _, f := range fixedHolidays {
		if year < f.since {
			continue
		}
		out = append(out, Holiday{Date: engine.NewTimePoint(year, f.Month, f.Day), Name: f.name})
	}
	easter := Easter(year)
	out = append(out,
		Holiday{Date: easter, Name: "Pasqua"},
		Holiday{Date: easter.AddDays(1), Name: "Lunedi dell'Angelo"},
	)
	if h.Patron != nil {
		out = append(out, Holiday{Date: engine.NewTimePoint(year, h.Patron.Month, h.Patron.Day), Name: "Santo Patrono"})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Easter returns Easter Sunday of the Gregorian calendar (anonymous
// Gregorian algorithm).
func Easter(year int) engine.TimePoint {
	a := year % 19
	b, c := year/100, year%100
	d, e := b/4, b%4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i, k := c/4, c%4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return engine.NewTimePoint(year, time.Month(month), day)
}
