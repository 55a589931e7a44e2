package risk

import "github.com/shopspring/decimal"

// PlannedRisk is the dollar loss if the stop is hit.
func PlannedRisk(shares, entry, stop decimal.Decimal) decimal.Decimal {
	return shares.Abs().Mul(entry.Sub(stop).Abs())
}

// RR is reward over risk, zero when the stop equals the entry.
func RR(entry, stop, takeProfit decimal.Decimal) decimal.Decimal {
	risk := entry.Sub(stop).Abs()
	if risk.IsZero() {
		return decimal.Zero
	}
	return takeProfit.Sub(entry).Abs().Div(risk)
}

// RiskPct is planned risk as a fraction of equity. Without equity it
// returns ok=false.
func RiskPct(planned, equity decimal.Decimal) (decimal.Decimal, bool) {
	if !equity.IsPositive() {
		return decimal.Zero, false
	}
	return planned.Div(equity), true
}
