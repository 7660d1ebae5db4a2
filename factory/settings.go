/*
Package factory provides JSON/TOML to Go settings conversion.

PURPOSE:
  Converts partial settings documents into a fully resolved engine.Settings.
  Every field is optional; missing fields take the single default table of
  package ccnl. The engine therefore never sees a missing value.

JSON SCHEMA:
  {
    "contract": {
      "monthly_salary": 2839.07,
      "overtime_threshold_hours": 8,
      "overtime_rates": {"ordinary": 1.2, "night": 1.35}
    },
    "travel_allowance": {"enabled": true, "daily_amount": 46.48, "policy": "WITH_TRAVEL"},
    "standby": {"allowance_type": "24h", "saturday_as_rest": true},
    "meals": {"lunch": {"voucher_amount": 8}},
    "net_pay": {"method": "custom", "custom_rate": 0.28}
  }

DERIVED DEFAULTS:
  When monthly_salary is given but daily_rate or hourly_rate is not, the
  missing rate is derived from the salary (ccnl.DailyFromMonthly,
  ccnl.HourlyFromMonthly) instead of taken from the default contract.
  Bucket rate maps are merged over the defaults one bucket at a time.

USAGE:
  f := factory.NewSettingsFactory()
  settings, err := f.ParseSettings(data)

  // Report which defaults were applied
  for _, issue := range factory.MissingFields(partial) { ... }

  // TOML file
  settings, err := f.LoadSettingsFile("workhours.toml")

SEE ALSO:
  - ccnl/presets.go: The default table
  - engine/settings.go: Settings type definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SettingsJSON is the partial, user-editable form of engine.Settings.
type SettingsJSON struct {
	Contract        *ContractJSON        `json:"contract,omitempty"`
	TravelAllowance *TravelAllowanceJSON `json:"travel_allowance,omitempty"`
	Standby         *StandbyJSON         `json:"standby,omitempty"`
	Meals           *MealsJSON           `json:"meals,omitempty"`
	NetPay          *NetPayJSON          `json:"net_pay,omitempty"`
}

type ContractJSON struct {
	MonthlySalary          *decimal.Decimal           `json:"monthly_salary,omitempty"`
	DailyRate              *decimal.Decimal           `json:"daily_rate,omitempty"`
	HourlyRate             *decimal.Decimal           `json:"hourly_rate,omitempty"`
	OvertimeThresholdHours *decimal.Decimal           `json:"overtime_threshold_hours,omitempty"`
	OvertimeRates          map[string]decimal.Decimal `json:"overtime_rates,omitempty"`
	SaturdayBonus          *decimal.Decimal           `json:"saturday_bonus,omitempty"`
	HolidayBonus           *decimal.Decimal           `json:"holiday_bonus,omitempty"`
	TravelCompensationRate *decimal.Decimal           `json:"travel_compensation_rate,omitempty"`
}

type TravelAllowanceJSON struct {
	Enabled            *bool            `json:"enabled,omitempty"`
	DailyAmount        *decimal.Decimal `json:"daily_amount,omitempty"`
	Policy             *string          `json:"policy,omitempty"`
	ApplyOnSpecialDays *bool            `json:"apply_on_special_days,omitempty"`
}

type StandbyJSON struct {
	Enabled        *bool                      `json:"enabled,omitempty"`
	Feriale16      *decimal.Decimal           `json:"feriale_16h,omitempty"`
	Feriale24      *decimal.Decimal           `json:"feriale_24h,omitempty"`
	Festivo        *decimal.Decimal           `json:"festivo,omitempty"`
	AllowanceType  *string                    `json:"allowance_type,omitempty"`
	SaturdayAsRest *bool                      `json:"saturday_as_rest,omitempty"`
	Rates          map[string]decimal.Decimal `json:"rates,omitempty"`
}

type MealRatesJSON struct {
	VoucherAmount *decimal.Decimal `json:"voucher_amount,omitempty"`
	CashAmount    *decimal.Decimal `json:"cash_amount,omitempty"`
}

type MealsJSON struct {
	Lunch  *MealRatesJSON `json:"lunch,omitempty"`
	Dinner *MealRatesJSON `json:"dinner,omitempty"`
}

type TaxBracketJSON struct {
	UpTo *decimal.Decimal `json:"up_to,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

type NetPayJSON struct {
	Method                 *string          `json:"method,omitempty"`
	CustomRate             *decimal.Decimal `json:"custom_rate,omitempty"`
	Brackets               []TaxBracketJSON `json:"brackets,omitempty"`
	SocialContributionRate *decimal.Decimal `json:"social_contribution_rate,omitempty"`
	SurtaxRate             *decimal.Decimal `json:"surtax_rate,omitempty"`
	AnnualizationFactor    *decimal.Decimal `json:"annualization_factor,omitempty"`
}

// =============================================================================
// SETTINGS FACTORY
// =============================================================================

// SettingsFactory converts settings documents to engine.Settings.
type SettingsFactory struct{}

func NewSettingsFactory() *SettingsFactory {
	return &SettingsFactory{}
}

// ParseSettings parses a JSON document and resolves it.
func (f *SettingsFactory) ParseSettings(data []byte) (engine.Settings, error) {
	sj, err := DecodeJSON(data)
	if err != nil {
		return engine.Settings{}, err
	}
	return ResolveSettings(sj)
}

// LoadSettingsFile reads a TOML settings file and resolves it.
func (f *SettingsFactory) LoadSettingsFile(path string) (engine.Settings, error) {
	sj, err := ReadSettingsFile(path)
	if err != nil {
		return engine.Settings{}, err
	}
	return ResolveSettings(sj)
}

// ReadSettingsFile reads a TOML settings file without resolving it.
func ReadSettingsFile(path string) (SettingsJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SettingsJSON{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	return DecodeTOML(data)
}

// DecodeJSON parses a partial settings document without resolving it.
func DecodeJSON(data []byte) (SettingsJSON, error) {
	var sj SettingsJSON
	if len(data) == 0 {
		return sj, nil
	}
	if err := json.Unmarshal(data, &sj); err != nil {
		return SettingsJSON{}, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	return sj, nil
}

// DecodeTOML parses a TOML document with the same keys as the JSON form.
// Numbers may be written bare or quoted.
func DecodeTOML(data []byte) (SettingsJSON, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return SettingsJSON{}, fmt.Errorf("failed to parse settings TOML: %w", err)
	}
	bridged, err := json.Marshal(raw)
	if err != nil {
		return SettingsJSON{}, fmt.Errorf("failed to convert settings TOML: %w", err)
	}
	return DecodeJSON(bridged)
}

// ResolveSettings fills every missing field from the default table. It fails
// only on values that cannot be interpreted (unknown policy, bucket, method).
func ResolveSettings(sj SettingsJSON) (engine.Settings, error) {
	s := ccnl.DefaultSettings()

	if c := sj.Contract; c != nil {
		if c.MonthlySalary != nil {
			s.Contract.MonthlySalary = *c.MonthlySalary
			s.Contract.DailyRate = ccnl.DailyFromMonthly(*c.MonthlySalary)
			s.Contract.HourlyRate = ccnl.HourlyFromMonthly(*c.MonthlySalary)
		}
		setDecimal(&s.Contract.DailyRate, c.DailyRate)
		setDecimal(&s.Contract.HourlyRate, c.HourlyRate)
		setDecimal(&s.Contract.OvertimeThresholdHours, c.OvertimeThresholdHours)
		setDecimal(&s.Contract.SaturdayBonus, c.SaturdayBonus)
		setDecimal(&s.Contract.HolidayBonus, c.HolidayBonus)
		setDecimal(&s.Contract.TravelCompensationRate, c.TravelCompensationRate)
		rates, err := mergeRates(s.Contract.OvertimeRates, c.OvertimeRates)
		if err != nil {
			return engine.Settings{}, fmt.Errorf("contract.overtime_rates: %w", err)
		}
		s.Contract.OvertimeRates = rates
	}

	if t := sj.TravelAllowance; t != nil {
		setBool(&s.TravelAllowance.Enabled, t.Enabled)
		setDecimal(&s.TravelAllowance.DailyAmount, t.DailyAmount)
		setBool(&s.TravelAllowance.ApplyOnSpecialDays, t.ApplyOnSpecialDays)
		if t.Policy != nil {
			p := engine.TravelAllowancePolicy(*t.Policy)
			if !p.Valid() {
				return engine.Settings{}, fmt.Errorf("travel_allowance.policy: unknown policy %q", *t.Policy)
			}
			s.TravelAllowance.Policy = p
		}
	}

	if sb := sj.Standby; sb != nil {
		setBool(&s.Standby.Enabled, sb.Enabled)
		setDecimal(&s.Standby.Feriale16, sb.Feriale16)
		setDecimal(&s.Standby.Feriale24, sb.Feriale24)
		setDecimal(&s.Standby.Festivo, sb.Festivo)
		setBool(&s.Standby.SaturdayAsRest, sb.SaturdayAsRest)
		if sb.AllowanceType != nil {
			switch at := engine.StandbyAllowanceType(*sb.AllowanceType); at {
			case engine.Standby16h, engine.Standby24h:
				s.Standby.AllowanceType = at
			default:
				return engine.Settings{}, fmt.Errorf("standby.allowance_type: unknown type %q", *sb.AllowanceType)
			}
		}
		rates, err := mergeRates(s.Standby.Rates, sb.Rates)
		if err != nil {
			return engine.Settings{}, fmt.Errorf("standby.rates: %w", err)
		}
		s.Standby.Rates = rates
	}

	if m := sj.Meals; m != nil {
		resolveMeal(&s.Meals.Lunch, m.Lunch)
		resolveMeal(&s.Meals.Dinner, m.Dinner)
	}

	if n := sj.NetPay; n != nil {
		if n.Method != nil {
			switch m := engine.NetPayMethod(*n.Method); m {
			case engine.NetPayCustom, engine.NetPayIRPEF:
				s.NetPay.Method = m
			default:
				return engine.Settings{}, fmt.Errorf("net_pay.method: unknown method %q", *n.Method)
			}
		}
		setDecimal(&s.NetPay.CustomRate, n.CustomRate)
		setDecimal(&s.NetPay.SocialContributionRate, n.SocialContributionRate)
		setDecimal(&s.NetPay.SurtaxRate, n.SurtaxRate)
		setDecimal(&s.NetPay.AnnualizationFactor, n.AnnualizationFactor)
		if len(n.Brackets) > 0 {
			s.NetPay.Brackets = make([]engine.TaxBracket, len(n.Brackets))
			for i, b := range n.Brackets {
				s.NetPay.Brackets[i] = engine.TaxBracket{UpTo: b.UpTo, Rate: b.Rate}
			}
		}
	}

	return s, nil
}

// MissingFields lists every settings field that ResolveSettings takes from
// the defaults, as MissingFieldError values.
func MissingFields(sj SettingsJSON) []error {
	def := ccnl.DefaultSettings()
	var issues []error
	missing := func(field string, value any) {
		issues = append(issues, &engine.MissingFieldError{Field: field, Default: fmt.Sprint(value)})
	}

	c := sj.Contract
	if c == nil {
		c = &ContractJSON{}
	}
	if c.MonthlySalary == nil {
		missing("contract.monthly_salary", def.Contract.MonthlySalary)
	}
	if c.DailyRate == nil && c.MonthlySalary == nil {
		missing("contract.daily_rate", def.Contract.DailyRate)
	}
	if c.HourlyRate == nil && c.MonthlySalary == nil {
		missing("contract.hourly_rate", def.Contract.HourlyRate)
	}
	if c.OvertimeThresholdHours == nil {
		missing("contract.overtime_threshold_hours", def.Contract.OvertimeThresholdHours)
	}
	for _, b := range engine.AllBuckets() {
		if _, ok := c.OvertimeRates[b.String()]; !ok {
			missing("contract.overtime_rates."+b.String(), def.Contract.OvertimeRates.Multiplier(b))
		}
	}
	if c.SaturdayBonus == nil {
		missing("contract.saturday_bonus", def.Contract.SaturdayBonus)
	}
	if c.HolidayBonus == nil {
		missing("contract.holiday_bonus", def.Contract.HolidayBonus)
	}
	if c.TravelCompensationRate == nil {
		missing("contract.travel_compensation_rate", def.Contract.TravelCompensationRate)
	}

	t := sj.TravelAllowance
	if t == nil {
		t = &TravelAllowanceJSON{}
	}
	if t.Enabled == nil {
		missing("travel_allowance.enabled", def.TravelAllowance.Enabled)
	}
	if t.DailyAmount == nil {
		missing("travel_allowance.daily_amount", def.TravelAllowance.DailyAmount)
	}
	if t.Policy == nil {
		missing("travel_allowance.policy", def.TravelAllowance.Policy)
	}
	if t.ApplyOnSpecialDays == nil {
		missing("travel_allowance.apply_on_special_days", def.TravelAllowance.ApplyOnSpecialDays)
	}

	sb := sj.Standby
	if sb == nil {
		sb = &StandbyJSON{}
	}
	if sb.Enabled == nil {
		missing("standby.enabled", def.Standby.Enabled)
	}
	if sb.Feriale16 == nil {
		missing("standby.feriale_16h", def.Standby.Feriale16)
	}
	if sb.Feriale24 == nil {
		missing("standby.feriale_24h", def.Standby.Feriale24)
	}
	if sb.Festivo == nil {
		missing("standby.festivo", def.Standby.Festivo)
	}
	if sb.AllowanceType == nil {
		missing("standby.allowance_type", def.Standby.AllowanceType)
	}
	if sb.SaturdayAsRest == nil {
		missing("standby.saturday_as_rest", def.Standby.SaturdayAsRest)
	}
	for _, b := range engine.AllBuckets() {
		if _, ok := sb.Rates[b.String()]; !ok {
			missing("standby.rates."+b.String(), def.Standby.Rates.Multiplier(b))
		}
	}

	m := sj.Meals
	if m == nil {
		m = &MealsJSON{}
	}
	meals := []struct {
		name  string
		rates *MealRatesJSON
		def   engine.MealRates
	}{{"lunch", m.Lunch, def.Meals.Lunch}, {"dinner", m.Dinner, def.Meals.Dinner}}
	for _, meal := range meals {
		r := meal.rates
		if r == nil {
			r = &MealRatesJSON{}
		}
		if r.VoucherAmount == nil {
			missing("meals."+meal.name+".voucher_amount", meal.def.VoucherAmount)
		}
		if r.CashAmount == nil {
			missing("meals."+meal.name+".cash_amount", meal.def.CashAmount)
		}
	}

	n := sj.NetPay
	if n == nil {
		n = &NetPayJSON{}
	}
	if n.Method == nil {
		missing("net_pay.method", def.NetPay.Method)
	}
	if n.CustomRate == nil {
		missing("net_pay.custom_rate", def.NetPay.CustomRate)
	}
	if len(n.Brackets) == 0 {
		missing("net_pay.brackets", len(def.NetPay.Brackets))
	}
	if n.SocialContributionRate == nil {
		missing("net_pay.social_contribution_rate", def.NetPay.SocialContributionRate)
	}
	if n.SurtaxRate == nil {
		missing("net_pay.surtax_rate", def.NetPay.SurtaxRate)
	}
	if n.AnnualizationFactor == nil {
		missing("net_pay.annualization_factor", def.NetPay.AnnualizationFactor)
	}
	return issues
}

// ToJSON converts resolved settings back to a complete document.
func ToJSON(s engine.Settings) SettingsJSON {
	policy := string(s.TravelAllowance.Policy)
	allowanceType := string(s.Standby.AllowanceType)
	method := string(s.NetPay.Method)

	brackets := make([]TaxBracketJSON, len(s.NetPay.Brackets))
	for i, b := range s.NetPay.Brackets {
		brackets[i] = TaxBracketJSON{UpTo: b.UpTo, Rate: b.Rate}
	}

	return SettingsJSON{
		Contract: &ContractJSON{
			MonthlySalary:          ptr(s.Contract.MonthlySalary),
			DailyRate:              ptr(s.Contract.DailyRate),
			HourlyRate:             ptr(s.Contract.HourlyRate),
			OvertimeThresholdHours: ptr(s.Contract.OvertimeThresholdHours),
			OvertimeRates:          rateMap(s.Contract.OvertimeRates),
			SaturdayBonus:          ptr(s.Contract.SaturdayBonus),
			HolidayBonus:           ptr(s.Contract.HolidayBonus),
			TravelCompensationRate: ptr(s.Contract.TravelCompensationRate),
		},
		TravelAllowance: &TravelAllowanceJSON{
			Enabled:            ptr(s.TravelAllowance.Enabled),
			DailyAmount:        ptr(s.TravelAllowance.DailyAmount),
			Policy:             &policy,
			ApplyOnSpecialDays: ptr(s.TravelAllowance.ApplyOnSpecialDays),
		},
		Standby: &StandbyJSON{
			Enabled:        ptr(s.Standby.Enabled),
			Feriale16:      ptr(s.Standby.Feriale16),
			Feriale24:      ptr(s.Standby.Feriale24),
			Festivo:        ptr(s.Standby.Festivo),
			AllowanceType:  &allowanceType,
			SaturdayAsRest: ptr(s.Standby.SaturdayAsRest),
			Rates:          rateMap(s.Standby.Rates),
		},
		Meals: &MealsJSON{
			Lunch:  &MealRatesJSON{VoucherAmount: ptr(s.Meals.Lunch.VoucherAmount), CashAmount: ptr(s.Meals.Lunch.CashAmount)},
			Dinner: &MealRatesJSON{VoucherAmount: ptr(s.Meals.Dinner.VoucherAmount), CashAmount: ptr(s.Meals.Dinner.CashAmount)},
		},
		NetPay: &NetPayJSON{
			Method:                 &method,
			CustomRate:             ptr(s.NetPay.CustomRate),
			Brackets:               brackets,
			SocialContributionRate: ptr(s.NetPay.SocialContributionRate),
			SurtaxRate:             ptr(s.NetPay.SurtaxRate),
			AnnualizationFactor:    ptr(s.NetPay.AnnualizationFactor),
		},
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func ptr[T any](v T) *T { return &v }

func resolveMeal(dst *engine.MealRates, mj *MealRatesJSON) {
	if mj == nil {
		return
	}
	setDecimal(&dst.VoucherAmount, mj.VoucherAmount)
	setDecimal(&dst.CashAmount, mj.CashAmount)
}

func mergeRates(base engine.BucketRates, overrides map[string]decimal.Decimal) (engine.BucketRates, error) {
	for name, m := range overrides {
		b, ok := engine.ParseBucket(name)
		if !ok {
			return base, fmt.Errorf("unknown bucket %q", name)
		}
		base = base.With(b, m)
	}
	return base, nil
}

func rateMap(r engine.BucketRates) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(engine.AllBuckets()))
	for _, b := range engine.AllBuckets() {
		out[b.String()] = r.Multiplier(b)
	}
	return out
}
