package engine

import "github.com/shopspring/decimal"

// =============================================================================
// DAILY BREAKDOWN - Itemized pay of one day
// =============================================================================

// DailyBreakdown is derived from one entry and the settings. It is never
// mutated once returned: TotalEarnings is set last and always equals
// Components().
type DailyBreakdown struct {
	Ordinary   OrdinaryPay     `json:"ordinary"`
	Overtime   BucketSet       `json:"overtime"`
	Travel     TravelPay       `json:"travel"`
	Standby    StandbyPay      `json:"standby"`
	Allowances Allowances      `json:"allowances"`
	FixedDay   decimal.Decimal `json:"fixed_day"`

	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// OrdinaryPay is the part of the day covered by the flat daily rate.
type OrdinaryPay struct {
	Hours    OrdinaryHours    `json:"hours"`
	Earnings OrdinaryEarnings `json:"earnings"`
}

type OrdinaryHours struct {
	// DailyPortion is work plus travel within the overtime threshold.
	DailyPortion decimal.Decimal `json:"daily_portion"`
	// Extra is work plus travel beyond the threshold.
	Extra decimal.Decimal `json:"extra"`
}

type OrdinaryEarnings struct {
	DailyPortion decimal.Decimal `json:"daily_portion"`
	// Bonus is the Saturday or Sunday/holiday supplement on the daily portion.
	Bonus decimal.Decimal `json:"bonus"`
}

// TravelPay covers the regular (non-intervention) travel legs.
type TravelPay struct {
	Hours             decimal.Decimal `json:"hours"`
	DailyPortionHours decimal.Decimal `json:"daily_portion_hours"`
	ExtraHours        decimal.Decimal `json:"extra_hours"`
	Earnings          decimal.Decimal `json:"earnings"`
}

// StandbyPay covers standby interventions, priced per bucket.
type StandbyPay struct {
	Work          BucketSet `json:"work"`
	Travel        BucketSet `json:"travel"`
	Interventions int       `json:"interventions"`
}

type Allowances struct {
	Travel  decimal.Decimal `json:"travel"`
	Standby decimal.Decimal `json:"standby"`
	Meal    decimal.Decimal `json:"meal"`
}

func (a Allowances) Total() decimal.Decimal { return a.Travel.Add(a.Standby).Add(a.Meal) }

// Components is the sum of every earning component of the day.
func (d DailyBreakdown) Components() decimal.Decimal {
	return d.Ordinary.Earnings.DailyPortion.
		Add(d.Ordinary.Earnings.Bonus).
		Add(d.Overtime.Earnings()).
		Add(d.Travel.Earnings).
		Add(d.Standby.Work.Earnings()).
		Add(d.Standby.Travel.Earnings()).
		Add(d.Allowances.Total()).
		Add(d.FixedDay)
}

// TaxableEarnings excludes the meal allowance, a non-taxable reimbursement.
func (d DailyBreakdown) TaxableEarnings() decimal.Decimal {
	return d.TotalEarnings.Sub(d.Allowances.Meal)
}

// WorkHours is regular plus intervention work.
func (d DailyBreakdown) WorkHours() decimal.Decimal {
	regular := d.Ordinary.Hours.DailyPortion.Add(d.Ordinary.Hours.Extra).Sub(d.Travel.Hours)
	return regular.Add(d.Standby.Work.Hours())
}

// TravelHours is regular plus intervention travel.
func (d DailyBreakdown) TravelHours() decimal.Decimal {
	return d.Travel.Hours.Add(d.Standby.Travel.Hours())
}

// TotalHours is all work and travel of the day.
func (d DailyBreakdown) TotalHours() decimal.Decimal {
	return d.Ordinary.Hours.DailyPortion.
		Add(d.Ordinary.Hours.Extra).
		Add(d.Standby.Work.Hours()).
		Add(d.Standby.Travel.Hours())
}

// OvertimeHours is the work past the threshold.
func (d DailyBreakdown) OvertimeHours() decimal.Decimal { return d.Overtime.Hours() }

// Add returns the field-wise sum. Commutative and associative, so months
// can be folded in any order.
func (d DailyBreakdown) Add(o DailyBreakdown) DailyBreakdown {
	return DailyBreakdown{
		Ordinary: OrdinaryPay{
			Hours: OrdinaryHours{
				DailyPortion: d.Ordinary.Hours.DailyPortion.Add(o.Ordinary.Hours.DailyPortion),
				Extra:        d.Ordinary.Hours.Extra.Add(o.Ordinary.Hours.Extra),
			},
			Earnings: OrdinaryEarnings{
				DailyPortion: d.Ordinary.Earnings.DailyPortion.Add(o.Ordinary.Earnings.DailyPortion),
				Bonus:        d.Ordinary.Earnings.Bonus.Add(o.Ordinary.Earnings.Bonus),
			},
		},
		Overtime: d.Overtime.Add(o.Overtime),
		Travel: TravelPay{
			Hours:             d.Travel.Hours.Add(o.Travel.Hours),
			DailyPortionHours: d.Travel.DailyPortionHours.Add(o.Travel.DailyPortionHours),
			ExtraHours:        d.Travel.ExtraHours.Add(o.Travel.ExtraHours),
			Earnings:          d.Travel.Earnings.Add(o.Travel.Earnings),
		},
		Standby: StandbyPay{
			Work:          d.Standby.Work.Add(o.Standby.Work),
			Travel:        d.Standby.Travel.Add(o.Standby.Travel),
			Interventions: d.Standby.Interventions + o.Standby.Interventions,
		},
		Allowances: Allowances{
			Travel:  d.Allowances.Travel.Add(o.Allowances.Travel),
			Standby: d.Allowances.Standby.Add(o.Allowances.Standby),
			Meal:    d.Allowances.Meal.Add(o.Allowances.Meal),
		},
		FixedDay:      d.FixedDay.Add(o.FixedDay),
		TotalEarnings: d.TotalEarnings.Add(o.TotalEarnings),
	}
}

func (d DailyBreakdown) sealed() DailyBreakdown {
	d.TotalEarnings = d.Components()
	return d
}
