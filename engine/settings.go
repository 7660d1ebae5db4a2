package engine

import "github.com/shopspring/decimal"

// =============================================================================
// SETTINGS - Fully resolved contract rule set
// =============================================================================
//
// Settings is a plain value. It is built once by factory.ResolveSettings with
// every default applied and then only read, so a single value can be shared
// by any number of concurrent computations.

type Settings struct {
	Contract        ContractSettings        `json:"contract"`
	TravelAllowance TravelAllowanceSettings `json:"travel_allowance"`
	Standby         StandbySettings         `json:"standby"`
	Meals           MealSettings            `json:"meals"`
	NetPay          NetPaySettings          `json:"net_pay"`
}

// ContractSettings are the pay rates of the labor contract.
type ContractSettings struct {
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`

	// OvertimeThresholdHours is the length of the day covered by DailyRate.
	OvertimeThresholdHours decimal.Decimal `json:"overtime_threshold_hours"`
	// OvertimeRates are the multipliers for ordinary-day work past the threshold.
	OvertimeRates BucketRates `json:"overtime_rates"`

	// SaturdayBonus and HolidayBonus are added on top of the daily portion,
	// as a fraction of it, when work happens on those days.
	SaturdayBonus decimal.Decimal `json:"saturday_bonus"`
	HolidayBonus  decimal.Decimal `json:"holiday_bonus"`

	// TravelCompensationRate multiplies the hourly rate for travel past the threshold.
	TravelCompensationRate decimal.Decimal `json:"travel_compensation_rate"`
}

// ThresholdMinutes is OvertimeThresholdHours in whole minutes.
func (c ContractSettings) ThresholdMinutes() int {
	return int(c.OvertimeThresholdHours.Mul(sixty).Round(0).IntPart())
}

// =============================================================================
// TRAVEL ALLOWANCE
// =============================================================================

type TravelAllowancePolicy string

const (
	AllowanceAlways        TravelAllowancePolicy = "ALWAYS"
	AllowanceFullDayOnly   TravelAllowancePolicy = "FULL_DAY_ONLY"
	AllowanceWithTravel    TravelAllowancePolicy = "WITH_TRAVEL"
	AllowanceProportional  TravelAllowancePolicy = "PROPORTIONAL_CCNL"
	AllowanceHalfOnHalfDay TravelAllowancePolicy = "HALF_ALLOWANCE_HALF_DAY"
)

// Valid reports whether the policy is one of the known values.
func (p TravelAllowancePolicy) Valid() bool {
	switch p {
	case AllowanceAlways, AllowanceFullDayOnly, AllowanceWithTravel, AllowanceProportional, AllowanceHalfOnHalfDay:
		return true
	}
	return false
}

type TravelAllowanceSettings struct {
	Enabled            bool                  `json:"enabled"`
	DailyAmount        decimal.Decimal       `json:"daily_amount"`
	Policy             TravelAllowancePolicy `json:"policy"`
	ApplyOnSpecialDays bool                  `json:"apply_on_special_days"`
}

// =============================================================================
// STANDBY
// =============================================================================

type StandbyAllowanceType string

const (
	Standby16h StandbyAllowanceType = "16h"
	Standby24h StandbyAllowanceType = "24h"
)

type StandbySettings struct {
	Enabled bool `json:"enabled"`

	// Flat daily indemnities.
	Feriale16 decimal.Decimal `json:"feriale_16h"`
	Feriale24 decimal.Decimal `json:"feriale_24h"`
	Festivo   decimal.Decimal `json:"festivo"`

	// AllowanceType selects the weekday indemnity.
	AllowanceType StandbyAllowanceType `json:"allowance_type"`
	// SaturdayAsRest pays Saturdays with the 24h weekday indemnity.
	SaturdayAsRest bool `json:"saturday_as_rest"`

	// Rates are the bucket multipliers for intervention work and travel.
	Rates BucketRates `json:"rates"`
}

// =============================================================================
// MEALS
// =============================================================================

type MealRates struct {
	VoucherAmount decimal.Decimal `json:"voucher_amount"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
}

type MealSettings struct {
	Lunch  MealRates `json:"lunch"`
	Dinner MealRates `json:"dinner"`
}

// =============================================================================
// NET PAY
// =============================================================================

type NetPayMethod string

const (
	NetPayCustom NetPayMethod = "custom"
	NetPayIRPEF  NetPayMethod = "irpef"
)

// TaxBracket taxes the part of income up to UpTo at Rate. A nil UpTo is the
// open top bracket.
type TaxBracket struct {
	UpTo *decimal.Decimal `json:"up_to,omitempty" toml:"up_to"`
	Rate decimal.Decimal  `json:"rate" toml:"rate"`
}

type NetPaySettings struct {
	Method     NetPayMethod    `json:"method"`
	CustomRate decimal.Decimal `json:"custom_rate"`

	Brackets               []TaxBracket    `json:"brackets"`
	SocialContributionRate decimal.Decimal `json:"social_contribution_rate"`
	SurtaxRate             decimal.Decimal `json:"surtax_rate"`
	AnnualizationFactor    decimal.Decimal `json:"annualization_factor"`
}
