package factory_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func parse(t *testing.T, doc string) engine.Settings {
	t.Helper()
	s, err := factory.NewSettingsFactory().ParseSettings([]byte(doc))
	require.NoError(t, err)
	return s
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolveSettings_EmptyIsDefault(t *testing.T) {
	s, err := factory.ResolveSettings(factory.SettingsJSON{})
	require.NoError(t, err)
	assert.Equal(t, jsonOf(t, ccnl.DefaultSettings()), jsonOf(t, s))

	assert.Equal(t, jsonOf(t, ccnl.DefaultSettings()), jsonOf(t, parse(t, "")))
	assert.Equal(t, jsonOf(t, ccnl.DefaultSettings()), jsonOf(t, parse(t, "{}")))
}

func TestResolveSettings_MonthlySalaryDerivesRates(t *testing.T) {
	// GIVEN: Only a monthly salary
	// WHEN: Resolving
	// THEN: Daily and hourly rates derive from it, not from the default contract

	s := parse(t, `{"contract": {"monthly_salary": 2600}}`)

	assert.True(t, dec("2600").Equal(s.Contract.MonthlySalary))
	assert.True(t, dec("100").Equal(s.Contract.DailyRate))
	assert.True(t, dec("15.03").Equal(s.Contract.HourlyRate))

	s = parse(t, `{"contract": {"monthly_salary": "2600", "hourly_rate": "16"}}`)
	assert.True(t, dec("16").Equal(s.Contract.HourlyRate), "explicit rate wins")
	assert.True(t, dec("100").Equal(s.Contract.DailyRate))
}

func TestResolveSettings_RatesMergePerBucket(t *testing.T) {
	s := parse(t, `{
		"contract": {"overtime_rates": {"night": 2}},
		"standby": {"rates": {"night_holiday": 1.8}, "allowance_type": "24h", "saturday_as_rest": true}
	}`)

	def := ccnl.DefaultSettings()
	assert.True(t, dec("2").Equal(s.Contract.OvertimeRates.Multiplier(engine.BucketNight)))
	assert.True(t, def.Contract.OvertimeRates.Multiplier(engine.BucketOrdinary).Equal(s.Contract.OvertimeRates.Multiplier(engine.BucketOrdinary)))
	assert.True(t, dec("1.8").Equal(s.Standby.Rates.Multiplier(engine.BucketNightHoliday)))
	assert.True(t, def.Standby.Rates.Multiplier(engine.BucketEvening).Equal(s.Standby.Rates.Multiplier(engine.BucketEvening)))
	assert.Equal(t, engine.Standby24h, s.Standby.AllowanceType)
	assert.True(t, s.Standby.SaturdayAsRest)
}

func TestResolveSettings_SectionsOverride(t *testing.T) {
	s := parse(t, `{
		"travel_allowance": {"enabled": true, "daily_amount": 46.48, "policy": "PROPORTIONAL_CCNL"},
		"meals": {"dinner": {"cash_amount": 12}},
		"net_pay": {"method": "custom", "custom_rate": 0.28, "brackets": [{"rate": 0.2}]}
	}`)

	assert.True(t, s.TravelAllowance.Enabled)
	assert.True(t, dec("46.48").Equal(s.TravelAllowance.DailyAmount))
	assert.Equal(t, engine.AllowanceProportional, s.TravelAllowance.Policy)
	assert.True(t, dec("12").Equal(s.Meals.Dinner.CashAmount))
	assert.True(t, dec("8").Equal(s.Meals.Dinner.VoucherAmount))
	assert.Equal(t, engine.NetPayCustom, s.NetPay.Method)
	assert.True(t, dec("0.28").Equal(s.NetPay.CustomRate))
	require.Len(t, s.NetPay.Brackets, 1)
	assert.Nil(t, s.NetPay.Brackets[0].UpTo)
}

func TestResolveSettings_RejectsUnknownValues(t *testing.T) {
	docs := map[string]string{
		"policy":         `{"travel_allowance": {"policy": "SOMETIMES"}}`,
		"bucket":         `{"contract": {"overtime_rates": {"midday": 1.1}}}`,
		"standby bucket": `{"standby": {"rates": {"weekend": 1.1}}}`,
		"allowance type": `{"standby": {"allowance_type": "12h"}}`,
		"method":         `{"net_pay": {"method": "flat"}}`,
		"malformed":      `{"contract": `,
		"wrong type":     `{"contract": {"monthly_salary": true}}`,
	}
	for name, doc := range docs {
		_, err := factory.NewSettingsFactory().ParseSettings([]byte(doc))
		assert.Error(t, err, name)
	}
}

// =============================================================================
// MISSING FIELDS
// =============================================================================

func TestMissingFields_EmptyDocument(t *testing.T) {
	issues := factory.MissingFields(factory.SettingsJSON{})

	// contract 14, travel allowance 4, standby 13, meals 4, net pay 6
	require.Len(t, issues, 41)
	for _, issue := range issues {
		assert.True(t, errors.Is(issue, engine.ErrMissingSettingsField), issue.Error())
	}

	var first *engine.MissingFieldError
	require.True(t, errors.As(issues[0], &first))
	assert.Equal(t, "contract.monthly_salary", first.Field)
	assert.Equal(t, "2839.07", first.Default)

	assert.Equal(t, jsonOf(t, errorStrings(issues)), jsonOf(t, errorStrings(factory.MissingFields(factory.SettingsJSON{}))), "stable order")
}

func TestMissingFields_SalaryCoversDerivedRates(t *testing.T) {
	sj, err := factory.DecodeJSON([]byte(`{"contract": {"monthly_salary": 2600}}`))
	require.NoError(t, err)

	for _, issue := range factory.MissingFields(sj) {
		var mf *engine.MissingFieldError
		require.True(t, errors.As(issue, &mf))
		assert.NotContains(t, []string{"contract.monthly_salary", "contract.daily_rate", "contract.hourly_rate"}, mf.Field)
	}
	assert.Len(t, factory.MissingFields(sj), 38)
}

func TestMissingFields_CompleteDocument(t *testing.T) {
	complete := factory.ToJSON(ccnl.DefaultSettings())
	assert.Empty(t, factory.MissingFields(complete))

	s, err := factory.ResolveSettings(complete)
	require.NoError(t, err)
	assert.Equal(t, jsonOf(t, ccnl.DefaultSettings()), jsonOf(t, s))
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// =============================================================================
// TOML FILES
// =============================================================================

const sampleTOML = `
[contract]
monthly_salary = 2600
overtime_threshold_hours = 7.5

[contract.overtime_rates]
night = 1.6

[travel_allowance]
enabled = true
daily_amount = "46.48"
policy = "HALF_ALLOWANCE_HALF_DAY"

[standby]
allowance_type = "24h"

[net_pay]
method = "irpef"

[[net_pay.brackets]]
up_to = 15000
rate = 0.23

[[net_pay.brackets]]
rate = 0.35
`

func TestLoadSettingsFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workhours.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

	s, err := factory.NewSettingsFactory().LoadSettingsFile(path)
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(s.Contract.DailyRate))
	assert.True(t, dec("7.5").Equal(s.Contract.OvertimeThresholdHours))
	assert.Equal(t, 450, s.Contract.ThresholdMinutes())
	assert.True(t, dec("1.6").Equal(s.Contract.OvertimeRates.Multiplier(engine.BucketNight)))
	assert.True(t, dec("46.48").Equal(s.TravelAllowance.DailyAmount))
	assert.Equal(t, engine.AllowanceHalfOnHalfDay, s.TravelAllowance.Policy)
	assert.Equal(t, engine.Standby24h, s.Standby.AllowanceType)
	require.Len(t, s.NetPay.Brackets, 2)
	require.NotNil(t, s.NetPay.Brackets[0].UpTo)
	assert.True(t, dec("15000").Equal(*s.NetPay.Brackets[0].UpTo))
	assert.Nil(t, s.NetPay.Brackets[1].UpTo)
}

func TestLoadSettingsFile_Errors(t *testing.T) {
	_, err := factory.NewSettingsFactory().LoadSettingsFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[contract\nmonthly_salary = "), 0o644))
	_, err = factory.NewSettingsFactory().LoadSettingsFile(path)
	assert.Error(t, err)
}
