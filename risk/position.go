package risk

import "github.com/shopspring/decimal"

type Inputs struct {
	Equity     decimal.Decimal
	RiskPct    decimal.Decimal // 0.01
	EntryPrice decimal.Decimal
	StopPrice  decimal.Decimal
}

type Result struct {
	Shares       decimal.Decimal // whole shares, never negative
	RiskPerShare decimal.Decimal
	RiskAmount   decimal.Decimal
}

// Calculate sizes a position so that hitting the stop loses
// Equity*RiskPct. A zero stop distance sizes to nothing.
func Calculate(in Inputs) Result {
	perShare := in.EntryPrice.Sub(in.StopPrice).Abs()
	riskAmt := in.Equity.Mul(in.RiskPct)

	res := Result{RiskPerShare: perShare, RiskAmount: riskAmt, Shares: decimal.Zero}
	if perShare.IsZero() || !riskAmt.IsPositive() {
		return res
	}
	res.Shares = riskAmt.Div(perShare).Floor()
	return res
}
