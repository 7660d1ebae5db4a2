package engine

import "github.com/shopspring/decimal"

// =============================================================================
// ALLOWANCES - Travel allowance, standby indemnity, meals
// =============================================================================

// fullDayMinutes is the 8h day the allowance policies are defined against.
const fullDayMinutes = 8 * 60

var (
	half = decimal.NewFromFloat(0.5)
	one  = decimal.NewFromInt(1)
)

// allowanceEligible applies the policy test, before the special-day gate.
func allowanceEligible(policy TravelAllowancePolicy, totalMinutes, travelMinutes int) bool {
	switch policy {
	case AllowanceAlways:
		return true
	case AllowanceFullDayOnly:
		return totalMinutes >= fullDayMinutes
	case AllowanceWithTravel:
		return travelMinutes > 0
	default:
		return totalMinutes > 0
	}
}

// TravelAllowance computes the per-day trasferta. totalMinutes and
// travelMinutes include intervention legs on standby days.
func TravelAllowance(entry *WorkDayEntry, cls Classification, totalMinutes, travelMinutes int, s TravelAllowanceSettings) decimal.Decimal {
	if entry == nil || !s.Enabled || !s.DailyAmount.IsPositive() {
		return decimal.Zero
	}
	if !allowanceEligible(s.Policy, totalMinutes, travelMinutes) {
		return decimal.Zero
	}
	if cls.IsSpecial() && !s.ApplyOnSpecialDays && !entry.TravelAllowanceOverride {
		return decimal.Zero
	}

	amount := s.DailyAmount
	switch s.Policy {
	case AllowanceProportional:
		// The entry percentage is superseded by the CCNL proportion.
		if totalMinutes < fullDayMinutes {
			amount = amount.Mul(decimal.NewFromInt(int64(totalMinutes))).Div(decimal.NewFromInt(fullDayMinutes))
		}
		return amount
	case AllowanceHalfOnHalfDay:
		if totalMinutes < fullDayMinutes {
			amount = amount.Mul(half)
		}
	}
	return amount.Mul(allowancePercent(entry))
}

// allowancePercent is the entry's travel allowance percentage, clamped to [0, 1].
func allowancePercent(entry *WorkDayEntry) decimal.Decimal {
	if entry.TravelAllowancePercent == nil {
		return one
	}
	p := *entry.TravelAllowancePercent
	switch {
	case p.IsNegative():
		return decimal.Zero
	case p.GreaterThan(one):
		return one
	}
	return p
}

// StandbyIndemnity is the flat amount credited once per standby day,
// whether or not an intervention happened.
func StandbyIndemnity(cls Classification, s StandbySettings) decimal.Decimal {
	if !s.Enabled {
		return decimal.Zero
	}
	switch {
	case cls.IsFestive():
		return nonNegative(s.Festivo)
	case cls.IsSaturday && s.SaturdayAsRest:
		return nonNegative(s.Feriale24)
	case s.AllowanceType == Standby24h:
		return nonNegative(s.Feriale24)
	default:
		return nonNegative(s.Feriale16)
	}
}

// MealAllowance resolves one meal. An explicit cash amount on the entry wins;
// a voucher credits the voucher plus the companion cash amount when one is
// configured; otherwise a cash meal credits the configured cash amount.
func MealAllowance(choice MealChoice, rates MealRates) decimal.Decimal {
	if choice.CashAmount != nil {
		return nonNegative(*choice.CashAmount)
	}
	if choice.Voucher {
		total := nonNegative(rates.VoucherAmount)
		if rates.CashAmount.IsPositive() {
			total = total.Add(rates.CashAmount)
		}
		return total
	}
	if choice.Cash && rates.CashAmount.IsPositive() {
		return rates.CashAmount
	}
	return decimal.Zero
}

// MealAllowances sums lunch and dinner.
func MealAllowances(entry *WorkDayEntry, s MealSettings) decimal.Decimal {
	if entry == nil {
		return decimal.Zero
	}
	return MealAllowance(entry.Lunch, s.Lunch).Add(MealAllowance(entry.Dinner, s.Dinner))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
