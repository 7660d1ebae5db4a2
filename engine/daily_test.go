package engine_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workhours/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// March 2025: the 1st is a Saturday, the 2nd a Sunday, the 3rd a Monday.
var (
	sat1 = engine.NewTimePoint(2025, time.March, 1)
	sun2 = engine.NewTimePoint(2025, time.March, 2)
	mon3 = engine.NewTimePoint(2025, time.March, 3)
	tue4 = engine.NewTimePoint(2025, time.March, 4)
)

// newTestSettings uses round figures: daily 100, hourly 12.50, 8h threshold.
func newTestSettings() engine.Settings {
	var ot, sb engine.BucketRates
	ot = ot.
		With(engine.BucketOrdinary, dec("1.20")).
		With(engine.BucketEvening, dec("1.25")).
		With(engine.BucketNight, dec("1.50")).
		With(engine.BucketHoliday, dec("1.50")).
		With(engine.BucketSaturday, dec("1.30")).
		With(engine.BucketSaturdayNight, dec("1.60")).
		With(engine.BucketNightHoliday, dec("2.00"))
	sb = sb.
		With(engine.BucketOrdinary, dec("1.20")).
		With(engine.BucketEvening, dec("1.25")).
		With(engine.BucketNight, dec("1.35")).
		With(engine.BucketHoliday, dec("1.35")).
		With(engine.BucketSaturday, dec("1.25")).
		With(engine.BucketSaturdayNight, dec("1.50")).
		With(engine.BucketNightHoliday, dec("1.50"))

	return engine.Settings{
		Contract: engine.ContractSettings{
			MonthlySalary:          dec("2600"),
			DailyRate:              dec("100"),
			HourlyRate:             dec("12.50"),
			OvertimeThresholdHours: dec("8"),
			OvertimeRates:          ot,
			SaturdayBonus:          dec("0.25"),
			HolidayBonus:           dec("0.50"),
			TravelCompensationRate: dec("1"),
		},
		TravelAllowance: engine.TravelAllowanceSettings{
			Enabled:     true,
			DailyAmount: dec("40"),
			Policy:      engine.AllowanceWithTravel,
		},
		Standby: engine.StandbySettings{
			Enabled:       true,
			Feriale16:     dec("4.22"),
			Feriale24:     dec("7.03"),
			Festivo:       dec("10.63"),
			AllowanceType: engine.Standby16h,
			Rates:         sb,
		},
		Meals: engine.MealSettings{
			Lunch:  engine.MealRates{VoucherAmount: dec("8")},
			Dinner: engine.MealRates{VoucherAmount: dec("8")},
		},
		NetPay: engine.NetPaySettings{Method: engine.NetPayCustom, CustomRate: dec("0.25")},
	}
}

func workEntry(date engine.TimePoint, shifts ...string) *engine.WorkDayEntry {
	e := &engine.WorkDayEntry{Date: date}
	for i := 0; i+1 < len(shifts); i += 2 {
		e.Shifts = append(e.Shifts, engine.Interval{Start: shifts[i], End: shifts[i+1]})
	}
	return e
}

func compute(t *testing.T, entry *engine.WorkDayEntry, s engine.Settings, holidays engine.HolidayCalendar) engine.DailyBreakdown {
	t.Helper()
	cls := engine.Classify(entry.Date, entry, false, holidays)
	b := engine.ComputeDaily(entry, cls, s)
	assertDecimal(t, b.Components().String(), b.TotalEarnings, "total must equal the sum of its components")
	return b
}

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// ORDINARY DAYS
// =============================================================================

func TestComputeDaily_FullWeekdayWithOvertime(t *testing.T) {
	// GIVEN: Monday 08:00-18:00, 2h past the 8h threshold in the day band
	// WHEN: Computing the day
	// THEN: Full daily rate plus 2h at 12.50 x 1.20

	b := compute(t, workEntry(mon3, "08:00", "18:00"), newTestSettings(), nil)

	assertDecimal(t, "100", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "0", b.Ordinary.Earnings.Bonus)
	assertDecimal(t, "8", b.Ordinary.Hours.DailyPortion)
	assertDecimal(t, "2", b.Ordinary.Hours.Extra)
	assertDecimal(t, "2", b.Overtime.Get(engine.BucketOrdinary).Hours)
	assertDecimal(t, "30", b.Overtime.Get(engine.BucketOrdinary).Earnings)
	assertDecimal(t, "0", b.Allowances.Travel, "no travel, WITH_TRAVEL pays nothing")
	assertDecimal(t, "130", b.TotalEarnings)
	assertDecimal(t, "10", b.TotalHours())
	assertDecimal(t, "2", b.OvertimeHours())
}

func TestComputeDaily_PartialDayIsProRated(t *testing.T) {
	b := compute(t, workEntry(mon3, "08:00", "12:00"), newTestSettings(), nil)

	assertDecimal(t, "50", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "0", b.OvertimeHours())
	assertDecimal(t, "50", b.TotalEarnings)
}

func TestComputeDaily_SplitShiftsFillThresholdChronologically(t *testing.T) {
	// GIVEN: 13:00-19:00 entered before 08:00-12:00
	// WHEN: Computing the day
	// THEN: The overtime is the chronological tail, 17:00-19:00, in the day band

	b := compute(t, workEntry(mon3, "13:00", "19:00", "08:00", "12:00"), newTestSettings(), nil)

	assertDecimal(t, "100", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "2", b.Overtime.Get(engine.BucketOrdinary).Hours)
	assertDecimal(t, "130", b.TotalEarnings)
}

func TestComputeDaily_OvertimeBands(t *testing.T) {
	// GIVEN: Monday 14:00-23:00, the ninth hour falls in the night band
	b := compute(t, workEntry(mon3, "14:00", "23:00"), newTestSettings(), nil)

	assertDecimal(t, "1", b.Overtime.Get(engine.BucketNight).Hours)
	assertDecimal(t, "18.75", b.Overtime.Get(engine.BucketNight).Earnings)
	assertDecimal(t, "0", b.Overtime.Get(engine.BucketEvening).Hours)
	assertDecimal(t, "118.75", b.TotalEarnings)
}

func TestComputeDaily_MidnightRollover(t *testing.T) {
	// GIVEN: Monday 20:00-06:00, overtime 04:00-06:00 of the next morning
	// THEN: The tail is night band and keeps Monday's weekday classification
	b := compute(t, workEntry(mon3, "20:00", "06:00"), newTestSettings(), nil)

	assertDecimal(t, "2", b.Overtime.Get(engine.BucketNight).Hours)
	assertDecimal(t, "37.5", b.Overtime.Get(engine.BucketNight).Earnings)
	assertDecimal(t, "137.5", b.TotalEarnings)
	assertDecimal(t, "10", b.TotalHours())
}

func TestComputeDaily_SaturdayBonus(t *testing.T) {
	b := compute(t, workEntry(sat1, "08:00", "12:00"), newTestSettings(), nil)

	assertDecimal(t, "50", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "12.5", b.Ordinary.Earnings.Bonus)
	assertDecimal(t, "62.5", b.TotalEarnings)
}

func TestComputeDaily_SundayBonusAndHolidayOvertime(t *testing.T) {
	b := compute(t, workEntry(sun2, "08:00", "18:00"), newTestSettings(), nil)

	assertDecimal(t, "50", b.Ordinary.Earnings.Bonus)
	assertDecimal(t, "2", b.Overtime.Get(engine.BucketHoliday).Hours)
	assertDecimal(t, "37.5", b.Overtime.Get(engine.BucketHoliday).Earnings)
	assertDecimal(t, "187.5", b.TotalEarnings)
}

func TestComputeDaily_HolidayOnSaturdayIsFestive(t *testing.T) {
	// GIVEN: Saturday March 1st declared a public holiday
	// WHEN: Working 08:00-18:00
	// THEN: Holiday bonus and holiday bucket, never the Saturday ones

	holidays := engine.NewHolidaySet(sat1)
	b := compute(t, workEntry(sat1, "08:00", "18:00"), newTestSettings(), holidays)

	assertDecimal(t, "50", b.Ordinary.Earnings.Bonus)
	assertDecimal(t, "2", b.Overtime.Get(engine.BucketHoliday).Hours)
	assertDecimal(t, "0", b.Overtime.Get(engine.BucketSaturday).Hours)
	assertDecimal(t, "187.5", b.TotalEarnings)
}

func TestComputeDaily_TravelFillsThresholdAfterWork(t *testing.T) {
	// GIVEN: 7h work and 2.5h travel on a weekday
	// WHEN: Computing the day
	// THEN: 1h of travel completes the daily portion, 1.5h is extra travel,
	//       and the travel allowance applies (WITH_TRAVEL)

	entry := workEntry(mon3, "08:00", "15:00")
	entry.Travel = engine.TravelLegs{
		Outbound: engine.Interval{Start: "06:00", End: "07:00"},
		Return:   engine.Interval{Start: "15:00", End: "16:30"},
	}
	b := compute(t, entry, newTestSettings(), nil)

	assertDecimal(t, "100", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "0", b.OvertimeHours())
	assertDecimal(t, "2.5", b.Travel.Hours)
	assertDecimal(t, "1", b.Travel.DailyPortionHours)
	assertDecimal(t, "1.5", b.Travel.ExtraHours)
	assertDecimal(t, "18.75", b.Travel.Earnings)
	assertDecimal(t, "40", b.Allowances.Travel)
	assertDecimal(t, "158.75", b.TotalEarnings)
	assertDecimal(t, "9.5", b.TotalHours())
	assertDecimal(t, "7", b.WorkHours())
	assertDecimal(t, "2.5", b.TravelHours())
}

func TestComputeDaily_MealsAreNotTaxable(t *testing.T) {
	entry := workEntry(mon3, "08:00", "16:00")
	entry.Lunch = engine.MealChoice{Voucher: true}
	entry.Dinner = engine.MealChoice{Cash: true, CashAmount: decPtr("15")}

	b := compute(t, entry, newTestSettings(), nil)

	assertDecimal(t, "23", b.Allowances.Meal)
	assertDecimal(t, "123", b.TotalEarnings)
	assertDecimal(t, "100", b.TaxableEarnings())
}

func TestComputeDaily_MalformedTimesContributeZero(t *testing.T) {
	entry := workEntry(mon3, "08:00", "12:00", "13:00", "1x:00")

	b := compute(t, entry, newTestSettings(), nil)

	assertDecimal(t, "4", b.TotalHours())
	assertDecimal(t, "50", b.TotalEarnings)
}

func TestComputeDaily_EmptyEntry(t *testing.T) {
	b := compute(t, &engine.WorkDayEntry{Date: mon3}, newTestSettings(), nil)

	assertDecimal(t, "0", b.TotalEarnings)
	assertDecimal(t, "0", b.TotalHours())
}

// =============================================================================
// FIXED DAYS
// =============================================================================

func TestComputeDaily_FixedDay(t *testing.T) {
	entry := workEntry(mon3, "08:00", "18:00")
	entry.Fixed = true
	entry.FixedKind = engine.FixedVacation

	b := compute(t, entry, newTestSettings(), nil)

	assertDecimal(t, "100", b.FixedDay)
	assertDecimal(t, "100", b.TotalEarnings)
	assertDecimal(t, "0", b.TotalHours(), "a fixed day computes nothing else")
}

func TestComputeDaily_FixedDayOverride(t *testing.T) {
	entry := &engine.WorkDayEntry{Date: mon3, Fixed: true, FixedEarnings: decPtr("120")}
	b := compute(t, entry, newTestSettings(), nil)
	assertDecimal(t, "120", b.TotalEarnings)

	entry.FixedEarnings = decPtr("-5")
	b = compute(t, entry, newTestSettings(), nil)
	assertDecimal(t, "0", b.TotalEarnings)
}

// =============================================================================
// STANDBY DAYS
// =============================================================================

func TestComputeDaily_StandbyIntervention(t *testing.T) {
	// GIVEN: A weekday on standby with a 21:00-23:00 callout and 30 min travel each way
	// WHEN: Computing the day
	// THEN: Every minute is priced by the standby table, split at 22:00,
	//       and the 16h indemnity is credited once

	s := newTestSettings()
	s.TravelAllowance.Enabled = false

	entry := &engine.WorkDayEntry{
		Date:    mon3,
		Standby: true,
		Interventions: []engine.Intervention{{
			Shifts: []engine.Interval{{Start: "21:00", End: "23:00"}},
			Travel: engine.TravelLegs{
				Outbound: engine.Interval{Start: "20:30", End: "21:00"},
				Return:   engine.Interval{Start: "23:00", End: "23:30"},
			},
		}},
	}
	b := compute(t, entry, s, nil)

	assertDecimal(t, "15.625", b.Standby.Work.Get(engine.BucketEvening).Earnings)
	assertDecimal(t, "16.875", b.Standby.Work.Get(engine.BucketNight).Earnings)
	assertDecimal(t, "7.8125", b.Standby.Travel.Get(engine.BucketEvening).Earnings)
	assertDecimal(t, "8.4375", b.Standby.Travel.Get(engine.BucketNight).Earnings)
	assertDecimal(t, "2", b.Standby.Work.Hours())
	assertDecimal(t, "1", b.Standby.Travel.Hours())
	assert.Equal(t, 1, b.Standby.Interventions)
	assertDecimal(t, "4.22", b.Allowances.Standby)
	assertDecimal(t, "0", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "52.97", b.TotalEarnings)
	assertDecimal(t, "3", b.TotalHours())
}

func TestComputeDaily_StandbyWithRegularShift(t *testing.T) {
	entry := workEntry(mon3, "08:00", "16:00")
	entry.Standby = true

	b := compute(t, entry, newTestSettings(), nil)

	assertDecimal(t, "100", b.Ordinary.Earnings.DailyPortion)
	assertDecimal(t, "4.22", b.Allowances.Standby)
	assertDecimal(t, "104.22", b.TotalEarnings)
	assert.Equal(t, 0, b.Standby.Interventions)
}

func TestComputeDaily_InterventionWithoutCompleteShiftIsNotCounted(t *testing.T) {
	entry := &engine.WorkDayEntry{
		Date:          mon3,
		Standby:       true,
		Interventions: []engine.Intervention{{Shifts: []engine.Interval{{Start: "21:00"}}}},
	}
	b := compute(t, entry, newTestSettings(), nil)

	assert.Equal(t, 0, b.Standby.Interventions)
	assertDecimal(t, "4.22", b.TotalEarnings)
}

func TestComputeStandbyOnly(t *testing.T) {
	s := newTestSettings()

	weekday := engine.Classify(mon3, nil, true, nil)
	require.Equal(t, engine.KindStandby, weekday.Kind)
	require.True(t, weekday.Synthetic)
	assertDecimal(t, "4.22", engine.ComputeDaily(nil, weekday, s).TotalEarnings)

	sunday := engine.Classify(sun2, nil, true, nil)
	assertDecimal(t, "10.63", engine.ComputeDaily(nil, sunday, s).TotalEarnings)

	saturday := engine.Classify(sat1, nil, true, nil)
	assertDecimal(t, "4.22", engine.ComputeDaily(nil, saturday, s).TotalEarnings)

	s.Standby.SaturdayAsRest = true
	assertDecimal(t, "7.03", engine.ComputeDaily(nil, saturday, s).TotalEarnings)

	s.Standby.AllowanceType = engine.Standby24h
	assertDecimal(t, "7.03", engine.ComputeDaily(nil, weekday, s).TotalEarnings)

	s.Standby.Enabled = false
	assertDecimal(t, "0", engine.ComputeDaily(nil, sunday, s).TotalEarnings)
}

func TestComputeDaily_NoEntryNoFlagIsEmpty(t *testing.T) {
	cls := engine.Classify(mon3, nil, false, nil)
	b := engine.ComputeDaily(nil, cls, newTestSettings())
	assert.True(t, b.TotalEarnings.IsZero())
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassify_Precedence(t *testing.T) {
	// GIVEN: An entry flagged both fixed and standby
	// WHEN: Classifying it
	// THEN: Fixed wins and the conflict is reported by Inspect

	entry := &engine.WorkDayEntry{Date: mon3, Fixed: true, Standby: true}
	cls := engine.Classify(mon3, entry, true, nil)

	assert.Equal(t, engine.KindFixed, cls.Kind)
	assert.True(t, cls.Conflict)

	issues := engine.Inspect(entry, cls)
	require.Len(t, issues, 1)
	assert.True(t, errors.Is(issues[0], engine.ErrConflictingDayFlags))

	plain := &engine.WorkDayEntry{Date: mon3}
	assert.Equal(t, engine.KindStandby, engine.Classify(mon3, plain, true, nil).Kind, "calendar flag applies to an entry")
	assert.Equal(t, engine.KindOrdinary, engine.Classify(mon3, plain, false, nil).Kind)
}

func TestClassify_DayTypes(t *testing.T) {
	cls := engine.Classify(sat1, nil, false, engine.NewHolidaySet(sat1))
	assert.True(t, cls.IsSaturday)
	assert.True(t, cls.IsHoliday)
	assert.True(t, cls.IsFestive())
	assert.True(t, cls.IsSpecial())

	cls = engine.Classify(mon3, nil, false, nil)
	assert.False(t, cls.IsSpecial())
}

// =============================================================================
// INSPECTION
// =============================================================================

func TestInspect_ReportsDegradedInput(t *testing.T) {
	entry := workEntry(mon3, "08:00", "8:5", "13:00", "")
	entry.Travel.Outbound = engine.Interval{Start: "", End: ""}
	entry.FixedEarnings = decPtr("-1")
	entry.TravelAllowancePercent = decPtr("1.5")
	cls := engine.Classify(mon3, entry, false, nil)

	issues := engine.Inspect(entry, cls)
	require.Len(t, issues, 4)

	var tv *engine.TimeValueError
	require.True(t, errors.As(issues[0], &tv))
	assert.Equal(t, "shifts[0].end", tv.Field)
	assert.Equal(t, "8:5", tv.Value)
	require.True(t, errors.As(issues[1], &tv))
	assert.Equal(t, "shifts[1].end", tv.Field)

	assert.True(t, errors.Is(issues[2], engine.ErrNegativeDuration))
	assert.True(t, errors.Is(issues[3], engine.ErrNegativeDuration))
	for _, issue := range issues {
		assert.True(t, engine.IsInputIssue(issue))
	}
}

func TestInspect_CleanEntry(t *testing.T) {
	entry := workEntry(mon3, "08:00", "17:00")
	assert.Empty(t, engine.Inspect(entry, engine.Classify(mon3, entry, false, nil)))
	assert.Nil(t, engine.Inspect(nil, engine.Classification{}))
}

// =============================================================================
// BREAKDOWN ALGEBRA
// =============================================================================

func TestDailyBreakdown_AddIsCommutative(t *testing.T) {
	s := newTestSettings()
	a := compute(t, workEntry(mon3, "08:00", "18:00"), s, nil)
	b := compute(t, workEntry(sun2, "20:00", "06:00"), s, nil)
	c := engine.ComputeDaily(nil, engine.Classify(tue4, nil, true, nil), s)

	assert.Equal(t, jsonOf(t, a.Add(b)), jsonOf(t, b.Add(a)))
	assert.Equal(t, jsonOf(t, a.Add(b).Add(c)), jsonOf(t, a.Add(b.Add(c))))

	sum := a.Add(b).Add(c)
	assertDecimal(t, sum.Components().String(), sum.TotalEarnings)
}
