package ccnl_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
)

func TestEaster(t *testing.T) {
	cases := map[int]string{
		2019: "2019-04-21",
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2038: "2038-04-25",
	}
	for year, want := range cases {
		assert.Equal(t, want, ccnl.Easter(year).String(), "year %d", year)
	}
}

func TestItalianHolidays_IsHoliday(t *testing.T) {
	h := ccnl.ItalianHolidays{}

	assert.True(t, h.IsHoliday(engine.NewTimePoint(2025, time.December, 25)))
	assert.True(t, h.IsHoliday(engine.NewTimePoint(2025, time.April, 21)), "Easter Monday 2025")
	assert.True(t, h.IsHoliday(engine.NewTimePoint(2025, time.April, 20)), "Easter Sunday 2025")
	assert.False(t, h.IsHoliday(engine.NewTimePoint(2025, time.April, 22)))
	assert.False(t, h.IsHoliday(engine.NewTimePoint(2025, time.October, 4)), "October 4 only from 2026")
	assert.True(t, h.IsHoliday(engine.NewTimePoint(2026, time.October, 4)))
}

func TestItalianHolidays_Patron(t *testing.T) {
	milan := ccnl.ItalianHolidays{Patron: &ccnl.MonthDay{Month: time.December, Day: 7}}

	assert.True(t, milan.IsHoliday(engine.NewTimePoint(2025, time.December, 7)))
	assert.False(t, ccnl.ItalianHolidays{}.IsHoliday(engine.NewTimePoint(2025, time.December, 7)))
}

func TestItalianHolidays_Year(t *testing.T) {
	// GIVEN: The 2025 calendar with a patron saint day
	// WHEN: Listing the year
	// THEN: 12 national holidays plus the patron, in date order

	h := ccnl.ItalianHolidays{Patron: &ccnl.MonthDay{Month: time.June, Day: 24}}
	list := h.Year(2025)

	require.Len(t, list, 13)
	assert.Equal(t, "2025-01-01", list[0].Date.String())
	assert.Equal(t, "2025-12-26", list[len(list)-1].Date.String())
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].Date.BeforeOrEqual(list[i].Date), "sorted at %d", i)
	}
	for _, hol := range list {
		assert.True(t, h.IsHoliday(hol.Date), hol.Name)
	}

	assert.Len(t, ccnl.ItalianHolidays{}.Year(2026), 13, "October 4 joins in 2026")
}

func TestDerivedRates(t *testing.T) {
	monthly := decimal.RequireFromString("2600")

	assert.True(t, decimal.RequireFromString("15.03").Equal(ccnl.HourlyFromMonthly(monthly)))
	assert.True(t, decimal.RequireFromString("100").Equal(ccnl.DailyFromMonthly(monthly)))
}

func TestDefaultSettings_AreComplete(t *testing.T) {
	s := ccnl.DefaultSettings()

	assert.True(t, s.Contract.DailyRate.IsPositive())
	assert.True(t, s.Contract.HourlyRate.IsPositive())
	for _, b := range engine.AllBuckets() {
		assert.True(t, s.Contract.OvertimeRates.Multiplier(b).IsPositive(), "overtime %s", b)
		assert.True(t, s.Standby.Rates.Multiplier(b).IsPositive(), "standby %s", b)
	}
	assert.True(t, s.TravelAllowance.Policy.Valid())
	assert.Len(t, s.NetPay.Brackets, 3)

	// Each call returns an independent value.
	s.NetPay.Brackets[0].Rate = decimal.Zero
	assert.False(t, ccnl.DefaultSettings().NetPay.Brackets[0].Rate.IsZero())
}
