package analytics

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func closed(id, date, pnl string) backend.JournalEntry {
	e := backend.JournalEntry{ID: id, EntryTime: day(date), Status: backend.TradeClosed}
	if pnl != "" {
		e.PnL = nd(pnl)
	}
	return e
}

func open(id, date, pnl string) backend.JournalEntry {
	e := closed(id, date, pnl)
	e.Status = backend.TradeOpen
	return e
}

func TestEquityCurve_Scenario(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{
		closed("1", "2024-01-01", "100"),
		closed("2", "2024-01-02", "-40"),
	}

	curve := EquityCurve(entries)
	require.Len(t, curve, 2)
	assert.Equal(t, "1/1", curve[0].Label)
	assert.True(t, curve[0].Equity.Equal(d("100")))
	assert.Equal(t, "1/2", curve[1].Label)
	assert.True(t, curve[1].Equity.Equal(d("60")))

	st := Compute(entries)
	assert.True(t, st.WinRate.Valid)
	assert.True(t, st.WinRate.Decimal.Equal(d("0.5")))
	assert.True(t, st.TotalPnL.Equal(d("60")))
}

func TestEquityCurve_Filtering(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{
		open("o1", "2024-01-03", ""),      // no pnl: flat point
		open("o2", "2024-01-04", "0"),     // zero pnl: dropped
		open("o3", "2024-01-02", "25"),    // non-zero pnl: kept
		closed("c1", "2024-01-01", ""),    // null pnl: kept as zero
		closed("c2", "2024-01-05", "-10"),
	}

	curve := EquityCurve(entries)
	require.Len(t, curve, 4)

	assert.Equal(t, "c1", curve[0].TradeID)
	assert.True(t, curve[0].NoPnL)
	assert.True(t, curve[0].Equity.IsZero())

	assert.Equal(t, "o3", curve[1].TradeID)
	assert.True(t, curve[1].Equity.Equal(d("25")))

	assert.Equal(t, "o1", curve[2].TradeID)
	assert.True(t, curve[2].NoPnL)
	assert.True(t, curve[2].Equity.Equal(d("25")))

	assert.Equal(t, "c2", curve[3].TradeID)
	assert.True(t, curve[3].Equity.Equal(d("15")))
}

func TestEquityCurve_OpenTradeWithoutPnL(t *testing.T) {
	t.Parallel()

	curve := EquityCurve([]backend.JournalEntry{
		closed("c1", "2024-01-01", "100"),
		open("o1", "2024-01-02", ""),
	})
	require.Len(t, curve, 2)
	assert.Equal(t, "1/2", curve[1].Label)
	assert.True(t, curve[1].PnL.IsZero())
	assert.True(t, curve[1].Equity.Equal(d("100")))
}

func TestEquityCurve_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, EquityCurve(nil))
}

func TestEquityCurve_StableForEqualTimes(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{
		closed("a", "2024-02-01", "1"),
		closed("b", "2024-02-01", "2"),
		closed("c", "2024-01-31", "3"),
	}
	curve := EquityCurve(entries)
	ids := []string{curve[0].TradeID, curve[1].TradeID, curve[2].TradeID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestDayLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "12/25", DayLabel(day("2025-12-25")))
	assert.Equal(t, "", DayLabel(time.Time{}))
}

// The fold's final value is the plain sum over realized entries, and
// reordering the input does not change the curve.
func TestEquityCurve_OrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		n := rng.Intn(20)
		entries := make([]backend.JournalEntry, 0, n)
		want := decimal.Zero
		base := day("2024-01-01")
		for i := 0; i < n; i++ {
			e := backend.JournalEntry{
				ID:        string(rune('a' + i)),
				EntryTime: base.Add(time.Duration(i) * time.Hour),
				Status:    backend.TradeOpen,
			}
			if rng.Intn(2) == 0 {
				e.Status = backend.TradeClosed
			}
			if rng.Intn(4) != 0 {
				e.PnL = decimal.NewNullDecimal(decimal.NewFromInt(int64(rng.Intn(401) - 200)))
			}
			if Realized(e) && e.PnL.Valid {
				want = want.Add(e.PnL.Decimal)
			}
			entries = append(entries, e)
		}

		curve := EquityCurve(entries)
		shuffled := append([]backend.JournalEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := EquityCurve(shuffled)

		require.Equal(t, len(curve), len(again))
		if len(curve) == 0 {
			assert.True(t, want.IsZero())
			continue
		}
		assert.True(t, curve[len(curve)-1].Equity.Equal(want), "round %d", round)

		sum := decimal.Zero
		for i, p := range curve {
			sum = sum.Add(p.PnL)
			assert.True(t, p.Equity.Equal(sum))
			assert.Equal(t, p.TradeID, again[i].TradeID)
			if i > 0 {
				assert.False(t, p.Time.Before(curve[i-1].Time))
			}
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label    string
		name     string
		category Category
	}{
		{"warrior_day", "WARRIOR", Warrior},
		{"Day Trade", "WARRIOR", Warrior},
		{"VWAP_SNIPER", "WARRIOR", Warrior},
		{"momentum", "WARRIOR", Warrior},
		{"swing_2050", "SWING", Swing},
		{"Elite", "SWING", Swing},
		{"ema_cross", "SWING", Swing},
		{"rsi_bands", "SWING", Swing},
		{"Buffett", "SWING", Swing},
		{"congress", "SWING", Swing},
		{"iron_condor", "OPTIONS", Options},
		{"Straddle", "OPTIONS", Options},
		{"credit spread", "OPTIONS", Options},
		{"options", "OPTIONS", Options},
		{"SEEDED", "MANUAL", Manual},
		{"manual entry", "MANUAL", Manual},
		{"swing_day", "WARRIOR", Warrior}, // earlier group wins
		{"kellog", "KELLOG", Unknown},
		{" one box ", "ONE BOX", Unknown},
		{"", "UNKNOWN", Unknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.label)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, got, Classify(tt.label))
		})
	}
}

func TestByBucket(t *testing.T) {
	t.Parallel()

	withBucket := func(e backend.JournalEntry, b string) backend.JournalEntry {
		e.Bucket = b
		return e
	}
	entries := []backend.JournalEntry{
		withBucket(closed("1", "2024-01-01", "50"), "zeta"),
		withBucket(closed("2", "2024-01-02", "-20"), "swing_2050"),
		withBucket(closed("3", "2024-01-03", "30"), "warrior"),
		withBucket(closed("4", "2024-01-04", "10"), "day"),
		withBucket(open("5", "2024-01-05", ""), "condor"),
		withBucket(closed("6", "2024-01-06", "5"), "alpha"),
	}

	got := ByBucket(entries)
	names := make([]string, 0, len(got))
	for _, b := range got {
		names = append(names, b.Bucket.Name)
	}
	assert.Equal(t, []string{"WARRIOR", "SWING", "ALPHA", "ZETA"}, names)
	assert.Equal(t, 2, got[0].Stats.Trades)
	assert.True(t, got[0].Stats.TotalPnL.Equal(d("40")))
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	st := Compute([]backend.JournalEntry{open("1", "2024-01-01", "10"), closed("2", "2024-01-02", "")})
	assert.Zero(t, st.Trades)
	assert.False(t, st.WinRate.Valid)
	assert.True(t, st.TotalPnL.IsZero())
	assert.False(t, st.AvgWin.Valid)
	assert.False(t, st.AvgLoss.Valid)
	assert.False(t, st.RewardRisk.Valid)
	assert.False(t, st.ProfitFactor.Valid)
	assert.False(t, st.Kelly.Valid)
	assert.False(t, st.AvgR.Valid)
}

func TestCompute_Extended(t *testing.T) {
	t.Parallel()

	a := closed("1", "2024-01-01", "100")
	a.RMultiple = nd("2")
	a.HoldingMinutes = nd("30")
	b := closed("2", "2024-01-02", "-50")
	b.RMultiple = nd("-1")
	b.HoldingMinutes = nd("90")
	c := closed("3", "2024-01-03", "-50")
	e := closed("4", "2024-01-04", "200")

	st := Compute([]backend.JournalEntry{e, c, b, a})
	assert.Equal(t, 4, st.Trades)
	assert.Equal(t, 2, st.Wins)
	assert.Equal(t, 2, st.Losses)
	assert.True(t, st.WinRate.Decimal.Equal(d("0.5")))
	assert.True(t, st.TotalPnL.Equal(d("200")))
	assert.True(t, st.AvgWin.Decimal.Equal(d("150")))
	assert.True(t, st.AvgLoss.Decimal.Equal(d("50")))
	assert.True(t, st.RewardRisk.Decimal.Equal(d("3")))
	assert.True(t, st.ProfitFactor.Decimal.Equal(d("3")))
	assert.True(t, st.AvgR.Decimal.Equal(d("0.5")))
	assert.True(t, st.AvgHoldMinutes.Decimal.Equal(d("60")))
	// cumulative 100, 50, 0, 200: peak 100, trough 0
	assert.True(t, st.MaxDrawdown.Equal(d("100")))
	// 0.5 - 0.5/3
	assert.InDelta(t, 0.3333, st.Kelly.Decimal.InexactFloat64(), 1e-4)
}

func TestCompute_BreakevenCountsAsLoss(t *testing.T) {
	t.Parallel()

	st := Compute([]backend.JournalEntry{closed("1", "2024-01-01", "0"), closed("2", "2024-01-02", "10")})
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.False(t, st.ProfitFactor.Valid)
	assert.True(t, st.AvgLoss.Decimal.IsZero())
	assert.False(t, st.RewardRisk.Valid)
}

// Recomputing over the same set must give the same aggregate as a direct
// count, whatever order the entries arrive in.
func TestCompute_MatchesDirectRecount(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 50; round++ {
		var entries []backend.JournalEntry
		wins, n := 0, 0
		total := decimal.Zero
		count := rng.Intn(30)
		for i := 0; i < count; i++ {
			e := backend.JournalEntry{EntryTime: day("2024-03-01").Add(time.Duration(rng.Intn(1000)) * time.Minute)}
			if rng.Intn(3) > 0 {
				e.Status = backend.TradeClosed
			}
			if rng.Intn(5) > 0 {
				e.PnL = decimal.NewNullDecimal(decimal.NewFromInt(int64(rng.Intn(201) - 100)))
			}
			if e.Closed() && e.PnL.Valid {
				n++
				total = total.Add(e.PnL.Decimal)
				if e.PnL.Decimal.IsPositive() {
					wins++
				}
			}
			entries = append(entries, e)
		}

		st := Compute(entries)
		assert.Equal(t, n, st.Trades)
		assert.True(t, st.TotalPnL.Equal(total))
		if n == 0 {
			assert.False(t, st.WinRate.Valid)
			continue
		}
		want := decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(n)))
		assert.True(t, st.WinRate.Decimal.Equal(want))
	}
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	derived := Compute([]backend.JournalEntry{
		closed("1", "2024-01-01", "100"),
		closed("2", "2024-01-02", "-40"),
	})

	t.Run("backend preferred and agrees", func(t *testing.T) {
		v := Reconcile(backend.JournalStats{WinRate: nd("0.5"), TotalPnL: nd("60"), TotalTrades: 2}, derived)
		assert.Equal(t, FromBackend, v.WinRate.Source)
		assert.False(t, v.Diverged())
		assert.Equal(t, 2, v.Trades)
	})

	t.Run("backend disagrees", func(t *testing.T) {
		v := Reconcile(backend.JournalStats{WinRate: nd("0.75"), TotalPnL: nd("60")}, derived)
		assert.True(t, v.WinRate.Value.Decimal.Equal(d("0.75")))
		assert.True(t, v.WinRate.Diverged)
		assert.False(t, v.TotalPnL.Diverged)
		assert.True(t, v.Diverged())
	})

	t.Run("backend silent", func(t *testing.T) {
		v := Reconcile(backend.JournalStats{Message: "No closed trades yet"}, derived)
		assert.Equal(t, FromJournal, v.WinRate.Source)
		assert.True(t, v.TotalPnL.Value.Decimal.Equal(d("60")))
		assert.False(t, v.Diverged())
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		v := Reconcile(backend.JournalStats{}, Compute(nil))
		assert.Equal(t, FromNone, v.WinRate.Source)
		assert.False(t, v.WinRate.Value.Valid)
		assert.False(t, v.TotalPnL.Value.Valid)
	})
}

func TestReturnPct(t *testing.T) {
	t.Parallel()

	e := closed("1", "2024-01-01", "30")
	e.EntryPrice = nd("150")
	e.Qty = d("-2")
	assert.True(t, ReturnPct(e).Decimal.Equal(d("0.1")))

	e.PnLPct = nd("0.2")
	assert.True(t, ReturnPct(e).Decimal.Equal(d("0.2")))

	zero := closed("2", "2024-01-01", "30")
	zero.EntryPrice = nd("150")
	assert.False(t, ReturnPct(zero).Valid)

	assert.False(t, ReturnPct(closed("3", "2024-01-01", "")).Valid)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]backend.Position{
		{Symbol: "AAPL", Qty: d("10"), Side: "long", MarketValue: d("1950"), CostBasis: d("1800"), UnrealizedPL: d("150"), AssetClass: backend.AssetEquity},
		{Symbol: "SPY240119C00470000", Qty: d("-2"), Side: "short", MarketValue: d("-300"), CostBasis: d("-200"), UnrealizedPL: d("-100"), AssetClass: backend.AssetOption},
	})
	assert.Equal(t, 2, s.Positions)
	assert.Equal(t, 1, s.Equities)
	assert.Equal(t, 1, s.Options)
	assert.Equal(t, 1, s.Short)
	assert.True(t, s.MarketValue.Equal(d("1650")))
	assert.True(t, s.UnrealizedPL.Equal(d("50")))
	assert.True(t, s.UnrealizedPLPct.Decimal.Equal(d("0.03125")))

	assert.False(t, Summarize(nil).UnrealizedPLPct.Valid)
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{closed("1", "2024-01-01", "100"), closed("2", "2024-01-02", "-40")}
	entries[0].Bucket = "warrior"
	v := Reconcile(backend.JournalStats{WinRate: nd("0.9")}, Compute(entries))

	var buf bytes.Buffer
	PrintReport(&buf, v, ByBucket(entries))
	out := buf.String()
	assert.Contains(t, out, "Win Rate:      90.00% (backend)")
	assert.Contains(t, out, "Total P/L:     60.00 (journal)")
	assert.Contains(t, out, "Backend and journal disagree")
	assert.Contains(t, out, "WARRIOR")
}
