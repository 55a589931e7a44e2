// Package analytics derives figures from raw journal and position
// records. Every function is pure: it reads its arguments and nothing
// else.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

// EquityPoint is one step of the equity curve.
type EquityPoint struct {
	TradeID string
	Symbol  string
	Time    time.Time
	Label   string // M/D of Time, empty when the entry time is unknown
	PnL     decimal.Decimal
	Equity  decimal.Decimal // cumulative, starting from zero
	NoPnL   bool            // the backend had no P&L; counted as zero
}

// Realized reports whether an entry belongs on the equity curve. Only an
// open entry with an explicit zero P&L is left off; a missing P&L still
// plots as a flat step.
func Realized(e backend.JournalEntry) bool {
	if e.Closed() || !e.PnL.Valid {
		return true
	}
	return !e.PnL.Decimal.IsZero()
}

// EquityCurve folds the realized entries, oldest first, into a running
// P&L sum.
func EquityCurve(entries []backend.JournalEntry) []EquityPoint {
	realized := byEntryTime(filter(entries, Realized))

	out := make([]EquityPoint, 0, len(realized))
	equity := decimal.Zero
	for _, e := range realized {
		pnl := e.PnL.Decimal
		if !e.PnL.Valid {
			pnl = decimal.Zero
		}
		equity = equity.Add(pnl)
		out = append(out, EquityPoint{
			TradeID: e.ID,
			Symbol:  e.Symbol,
			Time:    e.EntryTime,
			Label:   DayLabel(e.EntryTime),
			PnL:     pnl,
			Equity:  equity,
			NoPnL:   !e.PnL.Valid,
		})
	}
	return out
}

// DayLabel formats t as month/day without padding.
func DayLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

func filter(entries []backend.JournalEntry, keep func(backend.JournalEntry) bool) []backend.JournalEntry {
	out := make([]backend.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// byEntryTime sorts a copy; equal times keep their input order.
func byEntryTime(entries []backend.JournalEntry) []backend.JournalEntry {
	out := append([]backend.JournalEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryTime.Before(out[j].EntryTime)
	})
	return out
}
