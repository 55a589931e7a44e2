package analytics

import (
	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

// Stats summarises closed trades. A ratio whose denominator is zero is
// left invalid rather than set to zero.
type Stats struct {
	Trades int
	Wins   int
	Losses int // includes breakeven trades

	WinRate  decimal.NullDecimal
	TotalPnL decimal.Decimal

	AvgWin       decimal.NullDecimal
	AvgLoss      decimal.NullDecimal // magnitude, always >= 0
	RewardRisk   decimal.NullDecimal // AvgWin / AvgLoss
	ProfitFactor decimal.NullDecimal // gross win / gross loss
	Kelly        decimal.NullDecimal // p - (1-p)/RewardRisk

	AvgR           decimal.NullDecimal
	AvgHoldMinutes decimal.NullDecimal
	MaxDrawdown    decimal.Decimal // largest peak-to-trough drop of the cumulative P&L
}

// Scored reports whether an entry counts toward Stats: closed with a
// known P&L.
func Scored(e backend.JournalEntry) bool {
	return e.Closed() && e.PnL.Valid
}

// Compute derives Stats from the scored entries. The result does not
// depend on the order of entries.
func Compute(entries []backend.JournalEntry) Stats {
	scored := byEntryTime(filter(entries, Scored))

	var st Stats
	st.Trades = len(scored)

	grossWin, grossLoss := decimal.Zero, decimal.Zero
	var rSum, holdSum decimal.Decimal
	var rN, holdN int64

	equity, peak := decimal.Zero, decimal.Zero
	for _, e := range scored {
		pnl := e.PnL.Decimal
		st.TotalPnL = st.TotalPnL.Add(pnl)

		if pnl.IsPositive() {
			st.Wins++
			grossWin = grossWin.Add(pnl)
		} else {
			st.Losses++
			grossLoss = grossLoss.Add(pnl.Abs())
		}

		if e.RMultiple.Valid {
			rSum = rSum.Add(e.RMultiple.Decimal)
			rN++
		}
		if e.HoldingMinutes.Valid {
			holdSum = holdSum.Add(e.HoldingMinutes.Decimal)
			holdN++
		}

		equity = equity.Add(pnl)
		peak = decimal.Max(peak, equity)
		st.MaxDrawdown = decimal.Max(st.MaxDrawdown, peak.Sub(equity))
	}

	st.WinRate = ratio(decimal.NewFromInt(int64(st.Wins)), decimal.NewFromInt(int64(st.Trades)))
	st.AvgWin = ratio(grossWin, decimal.NewFromInt(int64(st.Wins)))
	st.AvgLoss = ratio(grossLoss, decimal.NewFromInt(int64(st.Losses)))
	st.ProfitFactor = ratio(grossWin, grossLoss)
	st.AvgR = ratio(rSum, decimal.NewFromInt(rN))
	st.AvgHoldMinutes = ratio(holdSum, decimal.NewFromInt(holdN))

	if st.AvgWin.Valid && st.AvgLoss.Valid {
		st.RewardRisk = ratio(st.AvgWin.Decimal, st.AvgLoss.Decimal)
	}
	if st.WinRate.Valid && st.RewardRisk.Valid && !st.RewardRisk.Decimal.IsZero() {
		p := st.WinRate.Decimal
		q := decimal.NewFromInt(1).Sub(p)
		st.Kelly = decimal.NewNullDecimal(p.Sub(q.Div(st.RewardRisk.Decimal)))
	}
	return st
}

func ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(num.Div(den))
}

// Source says where a reconciled figure came from.
type Source string

const (
	FromBackend Source = "backend"
	FromJournal Source = "journal"
	FromNone    Source = "none"
)

// Divergence thresholds between the backend aggregate and the one
// recomputed from the journal.
var (
	WinRateTolerance  = decimal.RequireFromString("0.0001")
	TotalPnLTolerance = decimal.RequireFromString("0.01")
)

// Figure is one reconciled value.
type Figure struct {
	Value    decimal.NullDecimal
	Source   Source
	Derived  decimal.NullDecimal
	Diverged bool
}

// StatsView is what the dashboard shows for the journal aggregate.
type StatsView struct {
	WinRate  Figure
	TotalPnL Figure
	Trades   int
	AvgR     decimal.NullDecimal
	Derived  Stats
}

// Diverged reports whether any figure disagrees with the journal.
func (v StatsView) Diverged() bool {
	return v.WinRate.Diverged || v.TotalPnL.Diverged
}

// Reconcile prefers the backend's own aggregate when it supplied a
// value and falls back to the recomputation otherwise. The two are
// compared, never assumed equal.
func Reconcile(reported backend.JournalStats, derived Stats) StatsView {
	v := StatsView{
		WinRate:  reconcile(reported.WinRate, derived.WinRate, WinRateTolerance),
		TotalPnL: reconcile(reported.TotalPnL, totalOrNull(derived), TotalPnLTolerance),
		Trades:   derived.Trades,
		AvgR:     derived.AvgR,
		Derived:  derived,
	}
	if reported.TotalTrades > 0 {
		v.Trades = reported.TotalTrades
	}
	if reported.AvgR.Valid {
		v.AvgR = reported.AvgR
	}
	return v
}

func totalOrNull(st Stats) decimal.NullDecimal {
	if st.Trades == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(st.TotalPnL)
}

func reconcile(reported, derived decimal.NullDecimal, tol decimal.Decimal) Figure {
	f := Figure{Derived: derived}
	switch {
	case reported.Valid:
		f.Value, f.Source = reported, FromBackend
		if derived.Valid {
			f.Diverged = reported.Decimal.Sub(derived.Decimal).Abs().GreaterThan(tol)
		}
	case derived.Valid:
		f.Value, f.Source = derived, FromJournal
	default:
		f.Source = FromNone
	}
	return f
}
