package analytics

import (
	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

// PortfolioSummary totals the open positions.
type PortfolioSummary struct {
	Positions       int
	Equities        int
	Options         int
	Long            int
	Short           int
	MarketValue     decimal.Decimal
	CostBasis       decimal.Decimal
	UnrealizedPL    decimal.Decimal
	UnrealizedPLPct decimal.NullDecimal // UnrealizedPL / CostBasis
}

// Summarize totals positions.
func Summarize(positions []backend.Position) PortfolioSummary {
	var s PortfolioSummary
	for _, p := range positions {
		s.Positions++
		if p.AssetClass == backend.AssetOption {
			s.Options++
		} else {
			s.Equities++
		}
		if p.Qty.IsNegative() || p.Side == "short" {
			s.Short++
		} else {
			s.Long++
		}
		s.MarketValue = s.MarketValue.Add(p.MarketValue)
		s.CostBasis = s.CostBasis.Add(p.CostBasis)
		s.UnrealizedPL = s.UnrealizedPL.Add(p.UnrealizedPL)
	}
	s.UnrealizedPLPct = ratio(s.UnrealizedPL, s.CostBasis.Abs())
	return s
}
