package analytics

import (
	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

// ReturnPct is an entry's return as a fraction of the capital committed.
// The backend's pnl_percent wins when present; otherwise it is derived
// from P&L, entry price and quantity.
func ReturnPct(e backend.JournalEntry) decimal.NullDecimal {
	if e.PnLPct.Valid {
		return e.PnLPct
	}
	if !e.PnL.Valid || !e.EntryPrice.Valid {
		return decimal.NullDecimal{}
	}
	return ratio(e.PnL.Decimal, e.EntryPrice.Decimal.Mul(e.Qty.Abs()))
}
