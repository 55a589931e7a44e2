package archive

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/shopspring/decimal"
)

var (
	tradeHeader  = []string{"trade_id", "symbol", "bucket", "side", "entry_time", "exit_time", "entry_price", "exit_price", "qty", "pnl_dollars", "pnl_percent", "r_multiple", "holding_minutes", "status", "notes"}
	equityHeader = []string{"trade_id", "time", "label", "pnl", "equity", "no_pnl"}
)

// CSV writes a fresh pair of files per run.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write(tradeHeader); err != nil {
		return nil, err
	}
	if err := ew.Write(equityHeader); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{tw, ew, tf, ef}, nil
}

func (j *CSV) RecordTrade(e backend.JournalEntry) error {
	err := j.trades.Write([]string{
		e.ID,
		e.Symbol,
		e.Bucket,
		e.Side,
		ts(e.EntryTime),
		ts(e.ExitTime),
		nd(e.EntryPrice),
		nd(e.ExitPrice),
		e.Qty.String(),
		nd(e.PnL),
		nd(e.PnLPct),
		nd(e.RMultiple),
		nd(e.HoldingMinutes),
		string(e.Status),
		e.Notes,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(p analytics.EquityPoint) error {
	err := j.equity.Write([]string{
		p.TradeID,
		ts(p.Time),
		p.Label,
		p.PnL.String(),
		p.Equity.String(),
		strconv.FormatBool(p.NoPnL),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

// nd renders a nullable decimal; null is an empty cell.
func nd(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
