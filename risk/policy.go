// Package risk sizes scan candidates against the account and checks the
// resulting plan against a trading policy.
package risk

import "github.com/shopspring/decimal"

type Policy struct {
	// Risk limits, as fractions of equity
	DefaultRiskPct decimal.Decimal // 0.01
	MaxRiskPct     decimal.Decimal // 0.02

	// Circuit breaker
	MaxDailyLossPct decimal.Decimal // 0.03

	// Exposure limits
	MaxOpenPositions int // 10

	// Trade constraints
	MinRR decimal.Decimal // 1.5
}

// DefaultPolicy is used when the backend reports no risk limit.
func DefaultPolicy() Policy {
	return Policy{
		DefaultRiskPct:   decimal.RequireFromString("0.01"),
		MaxRiskPct:       decimal.RequireFromString("0.02"),
		MaxDailyLossPct:  decimal.RequireFromString("0.03"),
		MaxOpenPositions: 10,
		MinRR:            decimal.RequireFromString("1.5"),
	}
}

// TradeIntent is a planned entry. Shares is signed like a position
// quantity; zero asks Evaluate to size the trade itself.
type TradeIntent struct {
	Symbol    string
	Direction string // LONG or SHORT
	Shares    decimal.Decimal

	Entry      decimal.Decimal
	Stop       decimal.Decimal
	TakeProfit decimal.Decimal
}

// AccountSnapshot is the part of the dashboard state the checks use.
type AccountSnapshot struct {
	Equity        decimal.Decimal
	DailyPnL      decimal.Decimal
	OpenPositions int
}
