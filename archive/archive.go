// Package archive keeps a local copy of the backend trade journal and
// the equity curve derived from it, in SQLite or CSV.
package archive

import (
	"fmt"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/config"
)

type Journal interface {
	RecordTrade(backend.JournalEntry) error
	RecordEquity(analytics.EquityPoint) error
	Close() error
}

// Open returns the archive configured by cfg.
func Open(cfg config.ArchiveConfig) (Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "csv", "":
		return NewCSV(cfg.TradesFile, cfg.EquityFile)
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}

// Sync writes every entry and its equity curve to j. It returns the
// number of trades and curve points written.
func Sync(j Journal, entries []backend.JournalEntry) (trades, points int, err error) {
	for _, e := range entries {
		if err := j.RecordTrade(e); err != nil {
			return trades, points, fmt.Errorf("record trade %s: %w", e.ID, err)
		}
		trades++
	}
	for _, p := range analytics.EquityCurve(entries) {
		if err := j.RecordEquity(p); err != nil {
			return trades, points, fmt.Errorf("record equity %s: %w", p.TradeID, err)
		}
		points++
	}
	return trades, points, nil
}
