package engine_test

import (
	"testing"

	"github.com/warp/workhours/engine"
)

func allowanceSettings(policy engine.TravelAllowancePolicy) engine.TravelAllowanceSettings {
	return engine.TravelAllowanceSettings{Enabled: true, DailyAmount: dec("40"), Policy: policy}
}

func TestTravelAllowance_Policies(t *testing.T) {
	weekday := engine.Classify(mon3, nil, false, nil)

	cases := []struct {
		name          string
		policy        engine.TravelAllowancePolicy
		total, travel int
		percent       string
		want          string
	}{
		{"always pays an empty day", engine.AllowanceAlways, 0, 0, "", "40"},
		{"full day only, short day", engine.AllowanceFullDayOnly, 420, 0, "", "0"},
		{"full day only, full day", engine.AllowanceFullDayOnly, 480, 0, "", "40"},
		{"with travel, no travel", engine.AllowanceWithTravel, 480, 0, "", "0"},
		{"with travel, percent applied", engine.AllowanceWithTravel, 480, 30, "0.5", "20"},
		{"proportional, half day", engine.AllowanceProportional, 240, 0, "", "20"},
		{"proportional ignores percent", engine.AllowanceProportional, 240, 0, "0.5", "20"},
		{"proportional, long day capped", engine.AllowanceProportional, 600, 0, "", "40"},
		{"proportional, no hours", engine.AllowanceProportional, 0, 0, "", "0"},
		{"half on half day", engine.AllowanceHalfOnHalfDay, 240, 0, "", "20"},
		{"half on half day with percent", engine.AllowanceHalfOnHalfDay, 240, 0, "0.5", "10"},
		{"half on half day, full day", engine.AllowanceHalfOnHalfDay, 480, 0, "", "40"},
		{"percent above one is clamped", engine.AllowanceAlways, 480, 0, "1.5", "40"},
		{"negative percent is clamped", engine.AllowanceAlways, 480, 0, "-0.5", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &engine.WorkDayEntry{Date: mon3}
			if tc.percent != "" {
				entry.TravelAllowancePercent = decPtr(tc.percent)
			}
			got := engine.TravelAllowance(entry, weekday, tc.total, tc.travel, allowanceSettings(tc.policy))
			assertDecimal(t, tc.want, got)
		})
	}
}

func TestTravelAllowance_SpecialDays(t *testing.T) {
	// GIVEN: Saturday work under ALWAYS
	// WHEN: Special days are not enabled
	// THEN: Nothing, unless the entry overrides or settings allow special days

	saturday := engine.Classify(sat1, nil, false, nil)
	entry := &engine.WorkDayEntry{Date: sat1}
	s := allowanceSettings(engine.AllowanceAlways)

	assertDecimal(t, "0", engine.TravelAllowance(entry, saturday, 480, 0, s))

	entry.TravelAllowanceOverride = true
	assertDecimal(t, "40", engine.TravelAllowance(entry, saturday, 480, 0, s))

	entry.TravelAllowanceOverride = false
	s.ApplyOnSpecialDays = true
	assertDecimal(t, "40", engine.TravelAllowance(entry, saturday, 480, 0, s))
}

func TestTravelAllowance_Disabled(t *testing.T) {
	weekday := engine.Classify(mon3, nil, false, nil)
	s := allowanceSettings(engine.AllowanceAlways)
	s.Enabled = false

	assertDecimal(t, "0", engine.TravelAllowance(&engine.WorkDayEntry{Date: mon3}, weekday, 480, 60, s))
	assertDecimal(t, "0", engine.TravelAllowance(nil, weekday, 480, 60, allowanceSettings(engine.AllowanceAlways)))
}

func TestStandbyIndemnity_OnlyOnSettings(t *testing.T) {
	s := newTestSettings().Standby

	assertDecimal(t, "10.63", engine.StandbyIndemnity(engine.Classify(mon3, nil, true, engine.NewHolidaySet(mon3)), s))
	assertDecimal(t, "4.22", engine.StandbyIndemnity(engine.Classify(mon3, nil, true, nil), s))
}

func TestMealAllowance(t *testing.T) {
	rates := engine.MealRates{VoucherAmount: dec("8")}
	withCash := engine.MealRates{VoucherAmount: dec("8"), CashAmount: dec("5")}

	assertDecimal(t, "0", engine.MealAllowance(engine.MealChoice{}, rates))
	assertDecimal(t, "8", engine.MealAllowance(engine.MealChoice{Voucher: true}, rates))
	assertDecimal(t, "13", engine.MealAllowance(engine.MealChoice{Voucher: true}, withCash))
	assertDecimal(t, "0", engine.MealAllowance(engine.MealChoice{Cash: true}, rates), "cash needs a configured amount")
	assertDecimal(t, "5", engine.MealAllowance(engine.MealChoice{Cash: true}, withCash))
	assertDecimal(t, "15", engine.MealAllowance(engine.MealChoice{Voucher: true, CashAmount: decPtr("15")}, withCash), "explicit amount wins")
	assertDecimal(t, "0", engine.MealAllowance(engine.MealChoice{Voucher: true, CashAmount: decPtr("0")}, rates), "explicit zero wins over the voucher")
	assertDecimal(t, "0", engine.MealAllowance(engine.MealChoice{Cash: true, CashAmount: decPtr("-4")}, withCash))
}
