package risk

import (
	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

// PolicyFor is DefaultPolicy with the backend's per-trade risk limit as
// the default risk, raising the maximum when the limit exceeds it.
func PolicyFor(h backend.HealthSnapshot) Policy {
	p := DefaultPolicy()
	if h.RiskLimit.Valid && h.RiskLimit.Decimal.IsPositive() {
		p.DefaultRiskPct = h.RiskLimit.Decimal
		p.MaxRiskPct = decimal.Max(p.MaxRiskPct, h.RiskLimit.Decimal)
	}
	return p
}

// Account builds the account snapshot from health and the position list.
func Account(h backend.HealthSnapshot, positions []backend.Position) AccountSnapshot {
	return AccountSnapshot{
		Equity:        h.Equity.Decimal,
		DailyPnL:      h.DailyPnL.Decimal,
		OpenPositions: len(positions),
	}
}

// IntentFor turns a scan candidate's trade plan into an unsized intent.
func IntentFor(c backend.ScanCandidate) TradeIntent {
	return TradeIntent{
		Symbol:     c.Symbol,
		Direction:  c.Direction,
		Entry:      c.Plan.Entry.Decimal,
		Stop:       c.Plan.StopLoss.Decimal,
		TakeProfit: c.Plan.TakeProfit.Decimal,
	}
}

// SizeCandidate sizes and checks c against the account.
func SizeCandidate(c backend.ScanCandidate, h backend.HealthSnapshot, positions []backend.Position) Decision {
	return Evaluate(PolicyFor(h), IntentFor(c), Account(h, positions))
}
