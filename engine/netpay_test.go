package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/workhours/engine"
)

func irpefSettings() engine.NetPaySettings {
	first, second := dec("28000"), dec("50000")
	return engine.NetPaySettings{
		Method: engine.NetPayIRPEF,
		Brackets: []engine.TaxBracket{
			{UpTo: &first, Rate: dec("0.23")},
			{UpTo: &second, Rate: dec("0.35")},
			{Rate: dec("0.43")},
		},
		SocialContributionRate: dec("0.0919"),
		SurtaxRate:             dec("0.0233"),
		AnnualizationFactor:    dec("12"),
	}
}

func TestEstimateNet_Custom(t *testing.T) {
	s := engine.NetPaySettings{Method: engine.NetPayCustom, CustomRate: dec("0.25")}

	np := engine.EstimateNet(dec("1000"), s)
	assertDecimal(t, "1000", np.Gross)
	assertDecimal(t, "750", np.Net)
	assertDecimal(t, "250", np.TotalDeductions)
	assertDecimal(t, "0.25", np.DeductionRate)

	s.CustomRate = dec("1.5")
	np = engine.EstimateNet(dec("1000"), s)
	assertDecimal(t, "0", np.Net, "rate clamped to 1")
	assertDecimal(t, "1", np.DeductionRate)
}

func TestEstimateNet_IRPEF(t *testing.T) {
	// GIVEN: 2000 gross a month, 24000 a year
	// WHEN: Estimating with the progressive method
	// THEN: social 2205.60, tax 5012.712, surtax 507.80952, 643.84 a month

	np := engine.EstimateNet(dec("2000"), irpefSettings())

	assertDecimal(t, "643.84", np.TotalDeductions)
	assertDecimal(t, "1356.16", np.Net)
	assertDecimal(t, "0.3219", np.DeductionRate)
}

func TestEstimateNet_ZeroAndNegativeGross(t *testing.T) {
	for _, gross := range []decimal.Decimal{decimal.Zero, dec("-100")} {
		np := engine.EstimateNet(gross, irpefSettings())
		assertDecimal(t, "0", np.Gross)
		assertDecimal(t, "0", np.Net)
		assertDecimal(t, "0", np.DeductionRate)

		np = engine.EstimateNet(gross, engine.NetPaySettings{Method: engine.NetPayCustom, CustomRate: dec("0.3")})
		assertDecimal(t, "0", np.Net)
		assertDecimal(t, "0.3", np.DeductionRate, "the custom rate holds at zero gross")
	}
}

func TestEstimateNet_CustomRateHoldsForAnyGross(t *testing.T) {
	// GIVEN: A custom rate of 30%
	// WHEN: Estimating any non-negative gross
	// THEN: Net is 70% of gross and the rate is reported unchanged

	s := engine.NetPaySettings{Method: engine.NetPayCustom, CustomRate: dec("0.30")}

	tests := []struct {
		gross string
		net   string
	}{
		{"0", "0"},
		{"0.01", "0.007"},
		{"100", "70"},
		{"1234.56", "864.192"},
		{"250000", "175000"},
	}
	for _, tt := range tests {
		t.Run(tt.gross, func(t *testing.T) {
			np := engine.EstimateNet(dec(tt.gross), s)
			assertDecimal(t, tt.net, np.Net)
			assertDecimal(t, "0.3", np.DeductionRate)
			assertDecimal(t, tt.gross, np.Net.Add(np.TotalDeductions))
		})
	}
}

func TestEstimateNet_DefaultAnnualization(t *testing.T) {
	s := irpefSettings()
	s.AnnualizationFactor = decimal.Zero

	assertDecimal(t, "643.84", engine.EstimateNet(dec("2000"), s).TotalDeductions)
}

func TestProgressiveTax(t *testing.T) {
	brackets := irpefSettings().Brackets

	assertDecimal(t, "0", engine.ProgressiveTax(decimal.Zero, brackets))
	assertDecimal(t, "2300", engine.ProgressiveTax(dec("10000"), brackets))
	assertDecimal(t, "6440", engine.ProgressiveTax(dec("28000"), brackets))
	assertDecimal(t, "18440", engine.ProgressiveTax(dec("60000"), brackets))

	capped := brackets[:1]
	assertDecimal(t, "6440", engine.ProgressiveTax(dec("30000"), capped), "income above a closed table is untaxed")
}
