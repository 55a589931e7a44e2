package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
)

const tradeColumns = `trade_id, symbol, bucket, side, entry_time, exit_time, entry_price, exit_price, qty,
	pnl_dollars, pnl_percent, r_multiple, holding_minutes, status, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (backend.JournalEntry, error) {
	var (
		e           backend.JournalEntry
		entry, exit sql.NullTime
		status      string
	)
	err := s.Scan(
		&e.ID,
		&e.Symbol,
		&e.Bucket,
		&e.Side,
		&entry,
		&exit,
		&e.EntryPrice,
		&e.ExitPrice,
		&e.Qty,
		&e.PnL,
		&e.PnLPct,
		&e.RMultiple,
		&e.HoldingMinutes,
		&status,
		&e.Notes,
	)
	if err != nil {
		return backend.JournalEntry{}, err
	}
	e.EntryTime = entry.Time
	e.ExitTime = exit.Time
	e.Status = backend.TradeStatus(status)
	return e, nil
}

// GetTrade returns a single archived trade by id.
func (j *SQLite) GetTrade(tradeID string) (backend.JournalEntry, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	e, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return backend.JournalEntry{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return backend.JournalEntry{}, err
	}
	return e, nil
}

// ListTrades returns every archived trade ordered by entry time.
func (j *SQLite) ListTrades() ([]backend.JournalEntry, error) {
	return j.queryTrades(`SELECT ` + tradeColumns + ` FROM trades ORDER BY entry_time ASC, trade_id ASC`)
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]backend.JournalEntry, error) {
	return j.queryTrades(`SELECT `+tradeColumns+` FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) queryTrades(q string, args ...any) ([]backend.JournalEntry, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backend.JournalEntry
	for rows.Next() {
		e, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the archived equity curve in time order.
func (j *SQLite) ListEquity() ([]analytics.EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, label, pnl, equity, no_pnl
		FROM equity
		ORDER BY time ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.EquityPoint
	for rows.Next() {
		var (
			p  analytics.EquityPoint
			ts sql.NullTime
		)
		if err := rows.Scan(&p.TradeID, &ts, &p.Label, &p.PnL, &p.Equity, &p.NoPnL); err != nil {
			return nil, err
		}
		p.Time = ts.Time
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
