package backend

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SystemStatus is the engine status reported by GET /.
type SystemStatus string

const (
	StatusActive  SystemStatus = "active"
	StatusOffline SystemStatus = "offline"
	StatusOther   SystemStatus = "other"
)

// TradingMode is the broker account mode.
type TradingMode string

const (
	ModeLive    TradingMode = "LIVE"
	ModePaper   TradingMode = "PAPER"
	ModeUnknown TradingMode = "UNKNOWN"
)

// HealthSnapshot is the status record. Each poll replaces it whole.
type HealthSnapshot struct {
	Status       SystemStatus
	RawStatus    string
	Mode         TradingMode
	RiskLimit    decimal.NullDecimal // fraction of equity risked per trade
	DailyPnL     decimal.NullDecimal
	DailyPnLPct  decimal.NullDecimal
	Equity       decimal.NullDecimal
	BrokerStatus string
}

// OfflineHealth is what a failed health read resolves to.
func OfflineHealth() HealthSnapshot {
	return HealthSnapshot{
		Status:    StatusOffline,
		RawStatus: "offline",
		Mode:      ModeUnknown,
	}
}

func (h HealthSnapshot) Online() bool { return h.Status == StatusActive }

type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetOption AssetClass = "option"
)

// Position is one broker position. Symbol is unique within a snapshot.
type Position struct {
	Symbol          string
	Qty             decimal.Decimal // signed; negative is short
	Side            string
	MarketValue     decimal.Decimal
	CostBasis       decimal.Decimal
	UnrealizedPL    decimal.Decimal
	UnrealizedPLPct decimal.Decimal // fraction, 0.05 == 5%
	CurrentPrice    decimal.Decimal
	AssetClass      AssetClass
}

// PositionKey keys positions by symbol.
func PositionKey(p Position) string { return p.Symbol }

type TradeStatus string

const (
	TradeOpen   TradeStatus = "OPEN"
	TradeClosed TradeStatus = "CLOSED"
)

// JournalEntry is one trade record from the backend journal. Nullable
// numeric fields are invalid when the backend had no value.
type JournalEntry struct {
	ID             string
	Symbol         string
	Bucket         string
	Side           string
	EntryTime      time.Time
	ExitTime       time.Time
	EntryPrice     decimal.NullDecimal
	ExitPrice      decimal.NullDecimal
	Qty            decimal.Decimal
	StopPrice      decimal.NullDecimal
	TargetPrice    decimal.NullDecimal
	RiskDollars    decimal.NullDecimal
	PnL            decimal.NullDecimal
	PnLPct         decimal.NullDecimal
	RMultiple      decimal.NullDecimal
	HoldingMinutes decimal.NullDecimal
	Status         TradeStatus
	Notes          string
}

func (e JournalEntry) Closed() bool { return e.Status == TradeClosed }

// JournalStats is the aggregate the backend computes itself. It need not
// agree with a recomputation over the journal history.
type JournalStats struct {
	WinRate        decimal.NullDecimal
	TotalPnL       decimal.NullDecimal
	AvgR           decimal.NullDecimal
	AvgHoldMinutes decimal.NullDecimal
	MaxDrawdown    decimal.NullDecimal
	TotalTrades    int
	Message        string
}

// Reported reports whether the backend supplied any figures.
func (s JournalStats) Reported() bool {
	return s.WinRate.Valid || s.TotalPnL.Valid
}

// Upload sources the backend accepts.
var Sources = []string{"chatgpt", "tradingview", "finviz"}

// AutomationSource holds files dropped by the automation router rather
// than uploaded by hand.
const AutomationSource = "chatgpt_automation"

// UploadInventory maps a source name to its filenames, in backend order.
type UploadInventory map[string][]string

// Names returns the sources present, sorted.
func (u UploadInventory) Names() []string {
	names := make([]string, 0, len(u))
	for k := range u {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (u UploadInventory) Count(source string) int { return len(u[source]) }

type TradePlan struct {
	Entry      decimal.NullDecimal
	StopLoss   decimal.NullDecimal
	TakeProfit decimal.NullDecimal
}

// ScanCandidate is one setup proposed by the scan engine.
type ScanCandidate struct {
	SignalID       string
	Symbol         string
	Direction      string
	SetupName      string
	Thesis         string
	WinProbability decimal.NullDecimal // percent, 0-100
	Plan           TradePlan
}

// ScanResults maps a scan section name to its candidates.
type ScanResults map[string][]ScanCandidate

func (s ScanResults) Total() int {
	n := 0
	for _, c := range s {
		n += len(c)
	}
	return n
}

// Sections returns the section names, sorted.
func (s ScanResults) Sections() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Ack is the acknowledgement body returned by command endpoints.
type Ack struct {
	Status   string
	Message  string
	FilePath string
}
