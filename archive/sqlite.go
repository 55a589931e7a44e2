package archive

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
)

// SQLite archives into a sqlite3 database. Rows are keyed by trade id,
// so archiving the same journal twice updates instead of duplicating.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Times are stored in UTC so range queries compare like with like.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (j *SQLite) RecordTrade(e backend.JournalEntry) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(trade_id, symbol, bucket, side, entry_time, exit_time, entry_price, exit_price, qty,
		 pnl_dollars, pnl_percent, r_multiple, holding_minutes, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Symbol, e.Bucket, e.Side, nullTime(e.EntryTime), nullTime(e.ExitTime),
		e.EntryPrice, e.ExitPrice, e.Qty,
		e.PnL, e.PnLPct, e.RMultiple, e.HoldingMinutes, string(e.Status), e.Notes,
	)
	return err
}

func (j *SQLite) RecordEquity(p analytics.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO equity
		(trade_id, time, label, pnl, equity, no_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.TradeID, nullTime(p.Time), p.Label, p.PnL, p.Equity, p.NoPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
