package risk

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	Shares         decimal.Decimal
	PlannedRisk    decimal.Decimal
	PlannedRiskPct decimal.NullDecimal
	PlannedRR      decimal.Decimal
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Codes lists the violation codes in order.
func (d Decision) Codes() []string {
	out := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		out[i] = v.Code
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// Evaluate checks intent against p and the account. An intent without
// shares is sized at p.DefaultRiskPct first.
func Evaluate(p Policy, intent TradeIntent, acct AccountSnapshot) Decision {
	d := Decision{Allowed: true}

	if intent.Entry.IsZero() || intent.Stop.IsZero() {
		d.add("NO_STOP_OR_ENTRY", "entry/stop must be set")
		return d
	}
	short := strings.EqualFold(intent.Direction, "SHORT")
	if (!short && intent.Stop.GreaterThanOrEqual(intent.Entry)) || (short && intent.Stop.LessThanOrEqual(intent.Entry)) {
		d.add("STOP_WRONG_SIDE", fmt.Sprintf("stop %s is on the wrong side of entry %s", intent.Stop, intent.Entry))
		return d
	}

	d.Shares = intent.Shares.Abs()
	if d.Shares.IsZero() {
		d.Shares = Calculate(Inputs{
			Equity:     acct.Equity,
			RiskPct:    p.DefaultRiskPct,
			EntryPrice: intent.Entry,
			StopPrice:  intent.Stop,
		}).Shares
	}
	if d.Shares.IsZero() {
		d.add("NO_SHARES", "risk budget buys no shares")
		return d
	}

	d.PlannedRisk = PlannedRisk(d.Shares, intent.Entry, intent.Stop)
	if pct, ok := RiskPct(d.PlannedRisk, acct.Equity); ok {
		d.PlannedRiskPct = decimal.NewNullDecimal(pct)
		if pct.GreaterThan(p.MaxRiskPct) {
			d.add("RISK_TOO_HIGH", fmt.Sprintf("planned risk %s%% exceeds max %s%%",
				pct.Mul(hundred).StringFixed(2), p.MaxRiskPct.Mul(hundred).StringFixed(2)))
		}
	} else {
		d.add("NO_EQUITY", "account equity unknown")
	}

	if !intent.TakeProfit.IsZero() {
		d.PlannedRR = RR(intent.Entry, intent.Stop, intent.TakeProfit)
		if d.PlannedRR.LessThan(p.MinRR) {
			d.add("RR_TOO_LOW", fmt.Sprintf("RR %s below minimum %s", d.PlannedRR.StringFixed(2), p.MinRR.StringFixed(2)))
		}
	}

	if p.MaxOpenPositions > 0 && acct.OpenPositions >= p.MaxOpenPositions {
		d.add("TOO_MANY_OPEN_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", acct.OpenPositions, p.MaxOpenPositions))
	}

	dayLimit := p.MaxDailyLossPct.Mul(acct.Equity).Neg()
	if acct.Equity.IsPositive() && acct.DailyPnL.LessThanOrEqual(dayLimit) {
		d.add("DAILY_LOSS_LIMIT", fmt.Sprintf("day P/L %s <= limit %s", acct.DailyPnL.StringFixed(2), dayLimit.StringFixed(2)))
	}

	return d
}
