/*
daily.go - Daily earnings engine

PURPOSE:
  Turns one classified entry into a DailyBreakdown. Pure function of its
  arguments: no I/O, no shared state, safe to call concurrently.

FIXED DAY:
  FixedDay = entry.FixedEarnings when set, else Contract.DailyRate.
  Nothing else is computed.

ORDINARY DAY:
  Work minutes fill the overtime threshold first, then travel minutes.

    covered >= threshold  ->  DailyPortion = DailyRate
    covered <  threshold  ->  DailyPortion = DailyRate x covered / threshold

  Work past the threshold is the chronological tail of the shifts. It is
  split into bands and paid HourlyRate x OvertimeRates[bucket]. Travel past
  the threshold is paid HourlyRate x TravelCompensationRate. On Saturday or
  Sunday/holiday the daily portion earns an extra SaturdayBonus or
  HolidayBonus fraction on top.

  Example (daily 100, hourly 12.5, threshold 8h, weekday OT 1.20):
    08:00-18:00 work  ->  DailyPortion 100, Overtime[ordinary] 2h = 30

STANDBY DAY:
  Regular shifts, if any, are paid as on an ordinary day. Every minute of
  every intervention is priced through the standby bucket table, separately
  for work and travel. The standby indemnity is credited once per day.

ALLOWANCES:
  Travel allowance and meals apply to ordinary and standby days with an
  entry. A standby-only day (calendar flag, no entry) carries only the
  indemnity.

SEE ALSO:
  - buckets.go: Band splitting and bucket multipliers
  - allowances.go: Travel allowance, indemnity and meal rules
*/
package engine

import "github.com/shopspring/decimal"

const defaultThresholdMinutes = 8 * 60

// ComputeDaily computes the breakdown of one day. A nil entry yields the
// indemnity-only day when classified as standby and an empty day otherwise.
func ComputeDaily(entry *WorkDayEntry, cls Classification, s Settings) DailyBreakdown {
	if entry == nil {
		if cls.Kind == KindStandby {
			return ComputeStandbyOnly(cls, s)
		}
		return DailyBreakdown{}
	}

	switch cls.Kind {
	case KindFixed:
		return fixedDay(entry, s.Contract).sealed()
	case KindStandby:
		return standbyDay(entry, cls, s).sealed()
	default:
		return ordinaryDay(entry, cls, s).sealed()
	}
}

// ComputeStandbyOnly is the synthetic day of a standby calendar flag with
// no entry: zero hours, indemnity only.
func ComputeStandbyOnly(cls Classification, s Settings) DailyBreakdown {
	var b DailyBreakdown
	b.Allowances.Standby = StandbyIndemnity(cls, s.Standby)
	return b.sealed()
}

func fixedDay(entry *WorkDayEntry, c ContractSettings) DailyBreakdown {
	var b DailyBreakdown
	if entry.FixedEarnings != nil {
		b.FixedDay = nonNegative(*entry.FixedEarnings)
	} else {
		b.FixedDay = nonNegative(c.DailyRate)
	}
	return b
}

func ordinaryDay(entry *WorkDayEntry, cls Classification, s Settings) DailyBreakdown {
	b := regularPay(entry, cls, s.Contract)

	total := entry.WorkMinutes() + entry.TravelMinutes()
	b.Allowances.Travel = TravelAllowance(entry, cls, total, entry.TravelMinutes(), s.TravelAllowance)
	b.Allowances.Meal = MealAllowances(entry, s.Meals)
	return b
}

func standbyDay(entry *WorkDayEntry, cls Classification, s Settings) DailyBreakdown {
	b := regularPay(entry, cls, s.Contract)

	hourly := nonNegative(s.Contract.HourlyRate)
	interventionWork, interventionTravel := 0, 0
	for _, iv := range entry.Interventions {
		for _, span := range sortedSpans(iv.Shifts) {
			b.Standby.Work = b.Standby.Work.price(SplitSpan(span, cls), hourly, s.Standby.Rates)
			interventionWork += span.Minutes()
		}
		for _, span := range sortedSpans(iv.Travel.legs()) {
			b.Standby.Travel = b.Standby.Travel.price(SplitSpan(span, cls), hourly, s.Standby.Rates)
			interventionTravel += span.Minutes()
		}
	}
	b.Standby.Interventions = entry.CountedInterventions()
	b.Allowances.Standby = StandbyIndemnity(cls, s.Standby)

	travel := entry.TravelMinutes() + interventionTravel
	total := entry.WorkMinutes() + interventionWork + travel
	b.Allowances.Travel = TravelAllowance(entry, cls, total, travel, s.TravelAllowance)
	b.Allowances.Meal = MealAllowances(entry, s.Meals)
	return b
}

// regularPay prices the regular shifts and travel legs: daily portion,
// special-day bonus, overtime and extra travel.
func regularPay(entry *WorkDayEntry, cls Classification, c ContractSettings) DailyBreakdown {
	var b DailyBreakdown

	workSpans := sortedSpans(entry.Shifts)
	workMinutes := 0
	for _, span := range workSpans {
		workMinutes += span.Minutes()
	}
	travelMinutes := entry.TravelMinutes()
	if workMinutes+travelMinutes == 0 {
		return b
	}

	threshold := c.ThresholdMinutes()
	if threshold <= 0 {
		threshold = defaultThresholdMinutes
	}
	coveredWork := min(workMinutes, threshold)
	coveredTravel := min(travelMinutes, threshold-coveredWork)
	covered := coveredWork + coveredTravel
	extraWork := workMinutes - coveredWork
	extraTravel := travelMinutes - coveredTravel

	daily := nonNegative(c.DailyRate)
	if covered < threshold {
		daily = daily.Mul(decimal.NewFromInt(int64(covered))).Div(decimal.NewFromInt(int64(threshold)))
	}
	b.Ordinary.Hours.DailyPortion = hoursFromMinutes(covered)
	b.Ordinary.Hours.Extra = hoursFromMinutes(extraWork + extraTravel)
	b.Ordinary.Earnings.DailyPortion = daily
	b.Ordinary.Earnings.Bonus = specialDayBonus(daily, cls, c)

	hourly := nonNegative(c.HourlyRate)
	skip := coveredWork
	for _, span := range workSpans {
		if skip >= span.Minutes() {
			skip -= span.Minutes()
			continue
		}
		tail := Span{From: span.From + skip, To: span.To}
		skip = 0
		b.Overtime = b.Overtime.price(SplitSpan(tail, cls), hourly, c.OvertimeRates)
	}

	b.Travel = TravelPay{
		Hours:             hoursFromMinutes(travelMinutes),
		DailyPortionHours: hoursFromMinutes(coveredTravel),
		ExtraHours:        hoursFromMinutes(extraTravel),
		Earnings:          payForMinutes(extraTravel, hourly.Mul(nonNegative(c.TravelCompensationRate))),
	}
	return b
}

func specialDayBonus(daily decimal.Decimal, cls Classification, c ContractSettings) decimal.Decimal {
	switch {
	case cls.IsFestive():
		return daily.Mul(nonNegative(c.HolidayBonus))
	case cls.IsSaturday:
		return daily.Mul(nonNegative(c.SaturdayBonus))
	}
	return decimal.Zero
}
