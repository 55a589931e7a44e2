package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/traderdash/internal/logger"
	"github.com/shopspring/decimal"
)

// The backend is a dynamically typed service: numbers arrive as numbers,
// numeric strings or null, ids as ints or strings. Records are therefore
// decoded field by field and every field has a default.

var errNoPayload = errors.New("no usable payload")

type record map[string]json.RawMessage

// blank reports whether a body carries nothing: empty, null or {}.
func blank(body []byte) bool {
	s := bytes.TrimSpace(body)
	if len(s) == 0 || string(s) == "null" {
		return true
	}
	var m map[string]json.RawMessage
	if json.Unmarshal(s, &m) == nil && len(m) == 0 {
		return true
	}
	return false
}

func decodeObject(body []byte) (record, error) {
	s := bytes.TrimSpace(body)
	if len(s) == 0 || string(s) == "null" {
		return nil, errNoPayload
	}
	var r record
	if err := json.Unmarshal(s, &r); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errNoPayload
	}
	return r, nil
}

// decodeList returns the object elements of a JSON array. Elements that
// are not objects are skipped.
func decodeList(body []byte) ([]record, error) {
	s := bytes.TrimSpace(body)
	if len(s) == 0 || string(s) == "null" {
		return nil, errNoPayload
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(s, &raw); err != nil {
		return nil, err
	}
	out := make([]record, 0, len(raw))
	for _, el := range raw {
		var r record
		if json.Unmarshal(el, &r) != nil || r == nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (r record) value(keys ...string) any {
	for _, k := range keys {
		raw, ok := r[k]
		if !ok {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if dec.Decode(&v) != nil || v == nil {
			continue
		}
		return v
	}
	return nil
}

func (r record) str(keys ...string) string {
	switch v := r.value(keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (r record) dec(keys ...string) decimal.NullDecimal {
	var s string
	switch v := r.value(keys...).(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (r record) num(keys ...string) decimal.Decimal {
	return r.dec(keys...).Decimal
}

func (r record) integer(keys ...string) int {
	d := r.dec(keys...)
	if !d.Valid {
		return 0
	}
	return int(d.Decimal.IntPart())
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTime accepts the layouts the journal has been written with over
// time. Naive values are taken as UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r record) timestamp(keys ...string) time.Time {
	t, _ := parseTime(r.str(keys...))
	return t
}

func healthFromRecord(r record) HealthSnapshot {
	h := HealthSnapshot{
		RawStatus:    r.str("status"),
		RiskLimit:    r.dec("risk_limit"),
		DailyPnL:     r.dec("daily_pnl", "day_pnl"),
		DailyPnLPct:  r.dec("daily_pnl_pct", "daily_pnl_percent"),
		Equity:       r.dec("equity", "total_equity"),
		BrokerStatus: r.str("alpaca_status", "broker_status"),
	}

	switch strings.ToLower(h.RawStatus) {
	case "system_active", "active":
		h.Status = StatusActive
	case "offline", "":
		h.Status = StatusOffline
	default:
		h.Status = StatusOther
	}

	switch strings.ToUpper(r.str("mode")) {
	case "LIVE":
		h.Mode = ModeLive
	case "PAPER":
		h.Mode = ModePaper
	default:
		h.Mode = ModeUnknown
	}
	return h
}

var occSymbol = regexp.MustCompile(`^[A-Z]{1,6}\d{6}[CP]\d{8}$`)

func assetClass(r record, symbol string) AssetClass {
	if c := strings.ToLower(r.str("asset_class")); c != "" {
		if strings.Contains(c, "option") {
			return AssetOption
		}
		return AssetEquity
	}
	if occSymbol.MatchString(symbol) {
		return AssetOption
	}
	return AssetEquity
}

func positionFromRecord(r record) Position {
	symbol := r.str("symbol")
	return Position{
		Symbol:          symbol,
		Qty:             r.num("qty"),
		Side:            strings.ToLower(r.str("side")),
		MarketValue:     r.num("market_value"),
		CostBasis:       r.num("cost_basis"),
		UnrealizedPL:    r.num("unrealized_pl"),
		UnrealizedPLPct: r.num("unrealized_plpc"),
		CurrentPrice:    r.num("current_price"),
		AssetClass:      assetClass(r, symbol),
	}
}

// positionsFromRecords drops the sentinel rows the backend emits in
// place of an error (side "ERR") and collapses duplicate symbols, keeping
// the first.
func positionsFromRecords(recs []record) []Position {
	out := make([]Position, 0, len(recs))
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		p := positionFromRecord(r)
		if p.Side == "err" {
			logger.L.Warn("backend reported position error", "row", p.Symbol)
			continue
		}
		if p.Symbol == "" {
			continue
		}
		if seen[p.Symbol] {
			logger.L.Warn("duplicate position symbol dropped", "symbol", p.Symbol)
			continue
		}
		seen[p.Symbol] = true
		out = append(out, p)
	}
	return out
}

func journalEntryFromRecord(r record) JournalEntry {
	return JournalEntry{
		ID:             r.str("trade_id", "id"),
		Symbol:         r.str("symbol"),
		Bucket:         r.str("bucket", "strategy"),
		Side:           strings.ToUpper(r.str("side")),
		EntryTime:      r.timestamp("entry_time"),
		ExitTime:       r.timestamp("exit_time"),
		EntryPrice:     r.dec("entry_price"),
		ExitPrice:      r.dec("exit_price"),
		Qty:            r.num("qty"),
		StopPrice:      r.dec("stop_price"),
		TargetPrice:    r.dec("target_price"),
		RiskDollars:    r.dec("risk_dollars"),
		PnL:            r.dec("pnl_dollars", "pnl"),
		PnLPct:         r.dec("pnl_percent"),
		RMultiple:      r.dec("r_multiple"),
		HoldingMinutes: r.dec("holding_minutes"),
		Status:         TradeStatus(strings.ToUpper(r.str("status"))),
		Notes:          r.str("notes"),
	}
}

func journalFromRecords(recs []record) []JournalEntry {
	out := make([]JournalEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, journalEntryFromRecord(r))
	}
	return out
}

func statsFromRecord(r record) JournalStats {
	return JournalStats{
		WinRate:        r.dec("win_rate"),
		TotalPnL:       r.dec("total_pnl"),
		AvgR:           r.dec("avg_R", "avg_r"),
		AvgHoldMinutes: r.dec("avg_hold_minutes"),
		MaxDrawdown:    r.dec("max_drawdown"),
		TotalTrades:    r.integer("total_trades"),
		Message:        r.str("msg", "message"),
	}
}

// uploadsFromBody maps source -> filenames. Non-string entries and
// non-list values are ignored.
func uploadsFromBody(body []byte) (UploadInventory, error) {
	r, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	inv := make(UploadInventory, len(r))
	for source, raw := range r {
		var items []any
		if json.Unmarshal(raw, &items) != nil {
			continue
		}
		files := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok {
				files = append(files, s)
			}
		}
		inv[source] = files
	}
	return inv, nil
}

func candidateFromRecord(r record) ScanCandidate {
	c := ScanCandidate{
		SignalID:  r.str("signal_id"),
		Symbol:    r.str("symbol"),
		Direction: strings.ToUpper(r.str("direction")),
		SetupName: r.str("setup_name"),
		Thesis:    r.str("thesis"),
	}
	var scores record
	if raw, ok := r["scores"]; ok && json.Unmarshal(raw, &scores) == nil {
		c.WinProbability = scores.dec("win_probability_estimate")
	}
	var plan record
	if raw, ok := r["trade_plan"]; ok && json.Unmarshal(raw, &plan) == nil {
		c.Plan = TradePlan{
			Entry:      plan.dec("entry"),
			StopLoss:   plan.dec("stop_loss"),
			TakeProfit: plan.dec("take_profit"),
		}
	}
	return c
}

func scanFromBody(body []byte) (ScanResults, error) {
	r, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	out := make(ScanResults, len(r))
	for section, raw := range r {
		recs, err := decodeList(raw)
		if err != nil {
			continue
		}
		cands := make([]ScanCandidate, 0, len(recs))
		for _, rec := range recs {
			cands = append(cands, candidateFromRecord(rec))
		}
		out[section] = cands
	}
	return out, nil
}

func ackFromRecord(r record) Ack {
	return Ack{
		Status:   strings.ToLower(r.str("status")),
		Message:  r.str("message", "msg", "detail"),
		FilePath: r.str("file_path"),
	}
}
