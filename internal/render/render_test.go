package render

import (
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/risk"
	"github.com/rustyeddy/traderdash/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	out := Health(backend.HealthSnapshot{
		Status:      backend.StatusActive,
		RawStatus:   "active",
		Mode:        backend.ModePaper,
		Equity:      nd("100000"),
		DailyPnL:    nd("250.5"),
		DailyPnLPct: nd("0.0025"),
		RiskLimit:   nd("0.01"),
	})
	assert.Contains(t, out, "ACTIVE")
	assert.Contains(t, out, "PAPER")
	assert.Contains(t, out, "100000.00")
	assert.Contains(t, out, "+250.50")
	assert.Contains(t, out, "0.25%")
	assert.Contains(t, out, "1.00% per trade")

	out = Health(backend.OfflineHealth())
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "UNKNOWN")
	assert.Contains(t, out, "Equity   n/a")
}

func TestPositions(t *testing.T) {
	t.Parallel()

	ps := []backend.Position{{
		Symbol:          "AAPL",
		Qty:             decimal.NewFromInt(10),
		CurrentPrice:    decimal.RequireFromString("190.5"),
		MarketValue:     decimal.RequireFromString("1905"),
		UnrealizedPL:    decimal.RequireFromString("-12.25"),
		UnrealizedPLPct: decimal.RequireFromString("-0.0064"),
		AssetClass:      backend.AssetEquity,
	}}

	out := Positions(ps, view.Synced)
	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "190.50")
	assert.Contains(t, out, "-12.25")
	assert.Contains(t, out, "-0.64%")
	assert.NotContains(t, out, "syncing")

	assert.Contains(t, Positions(ps, view.PendingMutation), "(syncing)")
	assert.Contains(t, Positions(nil, view.Synced), "no open positions")
}

func TestJournalNewestFirst(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{
		{ID: "t-1", Symbol: "TSLA", Bucket: "warrior_day", PnL: nd("120"), Status: backend.TradeClosed},
		{ID: "t-2", Symbol: "AMD", Bucket: "swing_2050", PnL: nd("-45"), Status: backend.TradeClosed},
		{ID: "t-3", Symbol: "AAPL", Bucket: "SEEDED", Status: backend.TradeOpen},
	}

	out := Journal(entries, 2)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "AMD")
	assert.NotContains(t, out, "TSLA")
	assert.Less(t, strings.Index(out, "AAPL"), strings.Index(out, "AMD"))
	assert.Contains(t, out, "SWING")

	assert.Contains(t, out, "RET")

	priced := []backend.JournalEntry{{
		ID: "t-4", Symbol: "NVDA", EntryPrice: nd("100"), Qty: decimal.NewFromInt(10),
		PnL: nd("50"), Status: backend.TradeClosed,
	}}
	assert.Contains(t, Journal(priced, 0), "5.00%")

	assert.Contains(t, Journal(entries, 0), "TSLA")
	assert.Contains(t, Journal(nil, 0), "no trades recorded")
}

func TestStatsShowsDivergence(t *testing.T) {
	t.Parallel()

	entries := []backend.JournalEntry{
		{ID: "a", PnL: nd("100"), Status: backend.TradeClosed},
		{ID: "b", PnL: nd("-40"), Status: backend.TradeClosed},
	}
	derived := analytics.Compute(entries)

	agree := Stats(analytics.Reconcile(backend.JournalStats{WinRate: nd("0.5"), TotalPnL: nd("60")}, derived))
	assert.Contains(t, agree, "50.00%")
	assert.Contains(t, agree, "[backend]")
	assert.NotContains(t, agree, "journal")

	differ := Stats(analytics.Reconcile(backend.JournalStats{WinRate: nd("0.9"), TotalPnL: nd("60")}, derived))
	assert.Contains(t, differ, "90.00%")
	assert.Contains(t, differ, "journal 50.00%")

	none := Stats(analytics.Reconcile(backend.JournalStats{}, analytics.Compute(nil)))
	assert.Contains(t, none, "n/a")
}

func TestCurveAndBuckets(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	entries := []backend.JournalEntry{
		{ID: "a", Symbol: "TSLA", Bucket: "warrior", EntryTime: day, PnL: nd("100"), Status: backend.TradeClosed},
		{ID: "b", Symbol: "AMD", Bucket: "swing", EntryTime: day.Add(24 * time.Hour), Status: backend.TradeClosed},
	}

	curve := Curve(analytics.EquityCurve(entries))
	assert.Contains(t, curve, "1/2")
	assert.Contains(t, curve, "1/3")
	assert.Contains(t, curve, "n/a")
	assert.Contains(t, curve, "100.00")
	assert.Contains(t, Curve(nil), "no closed trades")

	buckets := Buckets(analytics.ByBucket(entries))
	assert.Contains(t, buckets, "WARRIOR")
	assert.Equal(t, "", Buckets(nil))
}

func TestScan(t *testing.T) {
	t.Parallel()

	out := Scan(backend.ScanResults{
		"momentum": {{Symbol: "MSFT", Direction: "LONG", SetupName: "bull flag", WinProbability: nd("65"),
			Plan: backend.TradePlan{Entry: nd("410"), StopLoss: nd("405"), TakeProfit: nd("420")}}},
	})
	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "bull flag")
	assert.Contains(t, out, "410.00")
	assert.Contains(t, out, "420.00")

	assert.Contains(t, Scan(nil), "no candidates")
}

func TestDashboardHonoursResources(t *testing.T) {
	t.Parallel()

	s := view.EmptySnapshot()
	s.Resources = view.ControlCenter
	s.Uploads = backend.UploadInventory{"finviz": {"a.csv", "b.csv"}}

	out := Dashboard(s, nil, view.Synced, []view.Notice{{
		At: time.Now(), Level: view.LevelError, Action: "Close AAPL", Message: "server error",
	}})
	assert.Contains(t, out, "waiting for first poll")
	assert.Contains(t, out, "OFFLINE")
	assert.Contains(t, out, "finviz")
	assert.Contains(t, out, "Close AAPL failed: server error")
	assert.NotContains(t, out, "Positions")
	assert.NotContains(t, out, "Win rate")
}

func TestTableAlignsColumns(t *testing.T) {
	t.Parallel()

	out := table([][]string{{"A", "B"}, {"long", "x"}})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "  long  x", lines[1])
}

func TestSizing(t *testing.T) {
	t.Parallel()

	cands := []backend.ScanCandidate{
		{Symbol: "MSFT", Direction: "LONG", Plan: backend.TradePlan{Entry: nd("100"), StopLoss: nd("98"), TakeProfit: nd("105")}},
		{Symbol: "TSLA", Direction: "LONG", Plan: backend.TradePlan{Entry: nd("100"), StopLoss: nd("101")}},
	}
	h := backend.HealthSnapshot{Equity: nd("10000"), RiskLimit: nd("0.01")}
	ds := []risk.Decision{risk.SizeCandidate(cands[0], h, nil), risk.SizeCandidate(cands[1], h, nil)}

	out := Sizing(cands, ds)
	assert.Contains(t, out, "MSFT")
	assert.Contains(t, out, "50")
	assert.Contains(t, out, "1.00%")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "STOP_WRONG_SIDE")

	assert.Equal(t, "", Sizing(nil, nil))
}
