/*
presets.go - Pre-built contract settings

PURPOSE:
  Provides the default rule set used wherever a settings field is missing:
  an Italian metalworking (metalmeccanico) contract at level C3, standby
  indemnities of the reperibilita agreement and the 2024 IRPEF table.

AVAILABLE PRESETS:
  DefaultSettings:       complete engine.Settings, every field set
  MetalworkerContract:   ContractSettings derived from a monthly salary
  DefaultStandby:        StandbySettings with the CCNL indemnities
  IRPEFBrackets:         progressive tax table, three brackets

DERIVED RATES:
  HourlyRate = MonthlySalary / 173   (monthly hour divisor)
  DailyRate  = MonthlySalary / 26    (monthly day divisor)
  Both rounded to the cent.

EXAMPLE:
  s := ccnl.DefaultSettings()
  s.Contract = ccnl.MetalworkerContract(decimal.RequireFromString("2500"))
  calc, _ := engine.NewCalculator(&s, ccnl.ItalianHolidays{})

SEE ALSO:
  - factory/settings.go: Fills partial settings from these values
  - holidays.go: National holiday calendar
*/
package ccnl

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workhours/engine"
)

var (
	hourDivisor = decimal.NewFromInt(173)
	dayDivisor  = decimal.NewFromInt(26)
)

// DefaultMonthlySalary is the C3 minimum of the 2024 metalworking tables.
var DefaultMonthlySalary = decimal.RequireFromString("2839.07")

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// HourlyFromMonthly divides a monthly salary by the contract hour divisor.
func HourlyFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Div(hourDivisor).Round(2)
}

// DailyFromMonthly divides a monthly salary by the contract day divisor.
func DailyFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Div(dayDivisor).Round(2)
}

// DefaultOvertimeRates are the overtime multipliers per bucket.
func DefaultOvertimeRates() engine.BucketRates {
	var r engine.BucketRates
	return r.
		With(engine.BucketOrdinary, d("1.20")).
		With(engine.BucketEvening, d("1.25")).
		With(engine.BucketNight, d("1.35")).
		With(engine.BucketSaturday, d("1.50")).
		With(engine.BucketSaturdayNight, d("1.50")).
		With(engine.BucketHoliday, d("1.50")).
		With(engine.BucketNightHoliday, d("1.50"))
}

// DefaultStandbyRates are the multipliers for intervention work and travel.
func DefaultStandbyRates() engine.BucketRates {
	var r engine.BucketRates
	return r.
		With(engine.BucketOrdinary, d("1.20")).
		With(engine.BucketEvening, d("1.25")).
		With(engine.BucketNight, d("1.35")).
		With(engine.BucketSaturday, d("1.25")).
		With(engine.BucketSaturdayNight, d("1.50")).
		With(engine.BucketHoliday, d("1.35")).
		With(engine.BucketNightHoliday, d("1.50"))
}

// MetalworkerContract derives the contract rates from a monthly salary.
func MetalworkerContract(monthly decimal.Decimal) engine.ContractSettings {
	return engine.ContractSettings{
		MonthlySalary:          monthly,
		DailyRate:              DailyFromMonthly(monthly),
		HourlyRate:             HourlyFromMonthly(monthly),
		OvertimeThresholdHours: decimal.NewFromInt(8),
		OvertimeRates:          DefaultOvertimeRates(),
		SaturdayBonus:          d("0.25"),
		HolidayBonus:           d("0.30"),
		TravelCompensationRate: d("1.0"),
	}
}

func DefaultStandby() engine.StandbySettings {
	return engine.StandbySettings{
		Enabled:       true,
		Feriale16:     d("4.22"),
		Feriale24:     d("7.03"),
		Festivo:       d("10.63"),
		AllowanceType: engine.Standby16h,
		Rates:         DefaultStandbyRates(),
	}
}

// IRPEFBrackets returns a fresh copy of the 2024 table.
func IRPEFBrackets() []engine.TaxBracket {
	first, second := d("28000"), d("50000")
	return []engine.TaxBracket{
		{UpTo: &first, Rate: d("0.23")},
		{UpTo: &second, Rate: d("0.35")},
		{Rate: d("0.43")},
	}
}

func DefaultNetPay() engine.NetPaySettings {
	return engine.NetPaySettings{
		Method:                 engine.NetPayIRPEF,
		CustomRate:             d("0.25"),
		Brackets:               IRPEFBrackets(),
		SocialContributionRate: d("0.0919"),
		SurtaxRate:             d("0.0233"),
		AnnualizationFactor:    decimal.NewFromInt(12),
	}
}

// DefaultSettings returns the complete default rule set. Each call returns
// an independent value.
func DefaultSettings() engine.Settings {
	return engine.Settings{
		Contract: MetalworkerContract(DefaultMonthlySalary),
		TravelAllowance: engine.TravelAllowanceSettings{
			Enabled:     false,
			DailyAmount: decimal.Zero,
			Policy:      engine.AllowanceWithTravel,
		},
		Standby: DefaultStandby(),
		Meals: engine.MealSettings{
			Lunch:  engine.MealRates{VoucherAmount: d("8.00"), CashAmount: decimal.Zero},
			Dinner: engine.MealRates{VoucherAmount: d("8.00"), CashAmount: decimal.Zero},
		},
		NetPay: DefaultNetPay(),
	}
}
