package risk

import (
	"testing"

	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         Inputs
		wantShares string
		wantRisk   string
		wantPer    string
	}{
		{"long", Inputs{Equity: d("10000"), RiskPct: d("0.01"), EntryPrice: d("50"), StopPrice: d("48")}, "50", "100", "2"},
		{"stop above entry", Inputs{Equity: d("2000"), RiskPct: d("0.005"), EntryPrice: d("10"), StopPrice: d("10.3")}, "33", "10", "0.3"},
		{"rounds down", Inputs{Equity: d("1000"), RiskPct: d("0.01"), EntryPrice: d("410.5"), StopPrice: d("402")}, "1", "10", "8.5"},
		{"zero distance", Inputs{Equity: d("1000"), RiskPct: d("0.01"), EntryPrice: d("10"), StopPrice: d("10")}, "0", "10", "0"},
		{"no equity", Inputs{RiskPct: d("0.01"), EntryPrice: d("10"), StopPrice: d("9")}, "0", "0", "1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Calculate(tt.in)
			assert.True(t, got.Shares.Equal(d(tt.wantShares)), "shares %s", got.Shares)
			assert.True(t, got.RiskAmount.Equal(d(tt.wantRisk)), "risk %s", got.RiskAmount)
			assert.True(t, got.RiskPerShare.Equal(d(tt.wantPer)), "per share %s", got.RiskPerShare)
		})
	}
}

func TestRR(t *testing.T) {
	t.Parallel()

	assert.True(t, RR(d("100"), d("98"), d("105")).Equal(d("2.5")))
	assert.True(t, RR(d("100"), d("102"), d("95")).Equal(d("2.5")))
	assert.True(t, RR(d("100"), d("100"), d("105")).IsZero())
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	acct := AccountSnapshot{Equity: d("10000"), DailyPnL: d("0"), OpenPositions: 2}
	long := TradeIntent{Symbol: "MSFT", Direction: "LONG", Entry: d("100"), Stop: d("98"), TakeProfit: d("105")}

	tests := []struct {
		name   string
		policy func(*Policy)
		intent func(*TradeIntent)
		acct   func(*AccountSnapshot)
		codes  []string
	}{
		{name: "allowed"},
		{name: "missing stop", intent: func(i *TradeIntent) { i.Stop = decimal.Zero }, codes: []string{"NO_STOP_OR_ENTRY"}},
		{name: "long stop above entry", intent: func(i *TradeIntent) { i.Stop = d("101") }, codes: []string{"STOP_WRONG_SIDE"}},
		{name: "short stop below entry", intent: func(i *TradeIntent) { i.Direction = "short" }, codes: []string{"STOP_WRONG_SIDE"}},
		{name: "oversized", intent: func(i *TradeIntent) { i.Shares = d("200") }, codes: []string{"RISK_TOO_HIGH"}},
		{name: "poor reward", intent: func(i *TradeIntent) { i.TakeProfit = d("101") }, codes: []string{"RR_TOO_LOW"}},
		{name: "crowded", acct: func(a *AccountSnapshot) { a.OpenPositions = 10 }, codes: []string{"TOO_MANY_OPEN_POSITIONS"}},
		{name: "bad day", acct: func(a *AccountSnapshot) { a.DailyPnL = d("-300") }, codes: []string{"DAILY_LOSS_LIMIT"}},
		{name: "unknown equity", intent: func(i *TradeIntent) { i.Shares = d("10") }, acct: func(a *AccountSnapshot) { a.Equity = decimal.Zero }, codes: []string{"NO_EQUITY"}},
		{name: "budget too small", acct: func(a *AccountSnapshot) { a.Equity = d("100") }, codes: []string{"NO_SHARES"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, in, a := DefaultPolicy(), long, acct
			if tt.policy != nil {
				tt.policy(&p)
			}
			if tt.intent != nil {
				tt.intent(&in)
			}
			if tt.acct != nil {
				tt.acct(&a)
			}

			got := Evaluate(p, in, a)
			if len(tt.codes) == 0 {
				assert.True(t, got.Allowed, got.Codes())
				assert.Empty(t, got.Codes())
				return
			}
			assert.False(t, got.Allowed)
			assert.Equal(t, tt.codes, got.Codes())
		})
	}
}

func TestEvaluateSizesUnsizedIntent(t *testing.T) {
	t.Parallel()

	got := Evaluate(DefaultPolicy(),
		TradeIntent{Direction: "LONG", Entry: d("100"), Stop: d("98"), TakeProfit: d("105")},
		AccountSnapshot{Equity: d("10000")})

	assert.True(t, got.Allowed)
	assert.True(t, got.Shares.Equal(d("50")))
	assert.True(t, got.PlannedRisk.Equal(d("100")))
	assert.True(t, got.PlannedRiskPct.Decimal.Equal(d("0.01")))
	assert.True(t, got.PlannedRR.Equal(d("2.5")))
}

func TestSizeCandidateUsesBackendRiskLimit(t *testing.T) {
	t.Parallel()

	c := backend.ScanCandidate{
		Symbol: "MSFT", Direction: "LONG",
		Plan: backend.TradePlan{Entry: nd("410.5"), StopLoss: nd("402"), TakeProfit: nd("430")},
	}
	h := backend.HealthSnapshot{Equity: nd("100000"), RiskLimit: nd("0.005"), DailyPnL: nd("0")}

	got := SizeCandidate(c, h, nil)
	assert.True(t, got.Allowed, got.Codes())
	// 500 / 8.5 = 58.8
	assert.True(t, got.Shares.Equal(d("58")), got.Shares.String())

	p := PolicyFor(backend.HealthSnapshot{RiskLimit: nd("0.05")})
	assert.True(t, p.DefaultRiskPct.Equal(d("0.05")))
	assert.True(t, p.MaxRiskPct.Equal(d("0.05")))

	p = PolicyFor(backend.OfflineHealth())
	assert.True(t, p.DefaultRiskPct.Equal(d("0.01")))
}
