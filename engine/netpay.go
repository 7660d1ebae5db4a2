/*
netpay.go - Gross to net estimator

PURPOSE:
  Estimates the net monthly pay from a gross figure. Pure: the caller
  decides whether the gross is the computed month or a baseline salary.

METHODS:
  custom   net = gross x (1 - CustomRate)

  irpef    annual   = gross x AnnualizationFactor
           social   = annual x SocialContributionRate
           taxable  = annual - social
           irpef    = progressive Brackets over taxable
           surtax   = taxable x SurtaxRate
           deductions (monthly) = (social + irpef + surtax) / AnnualizationFactor

  A negative gross is treated as zero. DeductionRate is 0 when gross is 0.
*/
package engine

import "github.com/shopspring/decimal"

var defaultAnnualization = decimal.NewFromInt(12)

// NetPay is the estimator output.
type NetPay struct {
	Gross           decimal.Decimal `json:"gross"`
	Net             decimal.Decimal `json:"net"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	DeductionRate   decimal.Decimal `json:"deduction_rate"`
}

// EstimateNet maps a gross amount to net pay under the configured method.
func EstimateNet(gross decimal.Decimal, s NetPaySettings) NetPay {
	gross = nonNegative(gross)

	var deductions decimal.Decimal
	switch s.Method {
	case NetPayIRPEF:
		deductions = irpefDeductions(gross, s).Round(2)
	default:
		deductions = gross.Mul(clampUnit(s.CustomRate))
	}
	if deductions.GreaterThan(gross) {
		deductions = gross
	}

	out := NetPay{
		Gross:           gross,
		Net:             gross.Sub(deductions),
		TotalDeductions: deductions,
		DeductionRate:   decimal.Zero,
	}
	switch {
	case s.Method != NetPayIRPEF:
		out.DeductionRate = clampUnit(s.CustomRate)
	case gross.IsPositive():
		out.DeductionRate = deductions.Div(gross).Round(4)
	}
	return out
}

func irpefDeductions(gross decimal.Decimal, s NetPaySettings) decimal.Decimal {
	factor := s.AnnualizationFactor
	if !factor.IsPositive() {
		factor = defaultAnnualization
	}
	annual := gross.Mul(factor)
	social := annual.Mul(nonNegative(s.SocialContributionRate))
	taxable := annual.Sub(social)
	tax := ProgressiveTax(taxable, s.Brackets)
	surtax := taxable.Mul(nonNegative(s.SurtaxRate))
	return social.Add(tax).Add(surtax).Div(factor)
}

// ProgressiveTax applies the brackets in order. Each bracket taxes the slice
// of income between the previous bracket's UpTo and its own; a nil UpTo
// taxes everything above. Income past the last bounded bracket is untaxed
// when no open bracket exists.
func ProgressiveTax(income decimal.Decimal, brackets []TaxBracket) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range brackets {
		if !income.GreaterThan(lower) {
			break
		}
		upper := income
		if b.UpTo != nil && b.UpTo.LessThan(income) {
			upper = *b.UpTo
		}
		if upper.GreaterThan(lower) {
			tax = tax.Add(upper.Sub(lower).Mul(nonNegative(b.Rate)))
		}
		if b.UpTo == nil {
			break
		}
		lower = *b.UpTo
	}
	return tax
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	switch {
	case d.IsNegative():
		return decimal.Zero
	case d.GreaterThan(one):
		return one
	}
	return d
}
