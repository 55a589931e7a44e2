package view

import (
	"context"
	"time"

	"github.com/rustyeddy/traderdash/analytics"
	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/poller"
)

// Resource selects what a poll cycle fetches.
type Resource uint8

const (
	ResHealth Resource = 1 << iota
	ResPositions
	ResJournal
	ResStats
	ResUploads
)

// Resource sets for the dashboard screens.
const (
	ControlCenter = ResHealth | ResUploads
	Portfolio     = ResHealth | ResPositions
	Journal       = ResJournal | ResStats
	Everything    = ResHealth | ResPositions | ResJournal | ResStats | ResUploads
)

func (r Resource) Has(x Resource) bool { return r&x == x }

// Reader is the read side of the backend.
type Reader interface {
	Health(ctx context.Context) backend.HealthSnapshot
	Positions(ctx context.Context) []backend.Position
	JournalHistory(ctx context.Context) []backend.JournalEntry
	JournalStats(ctx context.Context) backend.JournalStats
	Uploads(ctx context.Context) backend.UploadInventory
}

// Snapshot is everything one poll cycle produced, raw and derived.
// Fields for resources that were not fetched hold their safe default.
type Snapshot struct {
	At        time.Time
	Resources Resource

	Health    backend.HealthSnapshot
	Positions []backend.Position
	Journal   []backend.JournalEntry
	Stats     backend.JournalStats
	Uploads   backend.UploadInventory

	Curve     []analytics.EquityPoint
	Derived   analytics.Stats
	StatsView analytics.StatsView
	Buckets   []analytics.BucketStats
	Portfolio analytics.PortfolioSummary
}

// EmptySnapshot is what a view shows before its first poll.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Health:    backend.OfflineHealth(),
		Positions: []backend.Position{},
		Journal:   []backend.JournalEntry{},
		Uploads:   backend.UploadInventory{},
	}
}

// Fetch returns a poll function that reads res concurrently and derives
// analytics once every read has settled.
func Fetch(r Reader, res Resource) func(context.Context) Snapshot {
	return func(ctx context.Context) Snapshot {
		s := EmptySnapshot()
		s.Resources = res

		var fns []func(context.Context)
		if res.Has(ResHealth) {
			fns = append(fns, func(ctx context.Context) { s.Health = r.Health(ctx) })
		}
		if res.Has(ResPositions) {
			fns = append(fns, func(ctx context.Context) { s.Positions = r.Positions(ctx) })
		}
		if res.Has(ResJournal) {
			fns = append(fns, func(ctx context.Context) { s.Journal = r.JournalHistory(ctx) })
		}
		if res.Has(ResStats) {
			fns = append(fns, func(ctx context.Context) { s.Stats = r.JournalStats(ctx) })
		}
		if res.Has(ResUploads) {
			fns = append(fns, func(ctx context.Context) { s.Uploads = r.Uploads(ctx) })
		}
		poller.Gather(ctx, fns...)

		s.At = time.Now()
		return Derive(s)
	}
}

// Derive fills the analytics fields from the raw ones.
func Derive(s Snapshot) Snapshot {
	s.Curve = analytics.EquityCurve(s.Journal)
	s.Derived = analytics.Compute(s.Journal)
	s.StatsView = analytics.Reconcile(s.Stats, s.Derived)
	s.Buckets = analytics.ByBucket(s.Journal)
	s.Portfolio = analytics.Summarize(s.Positions)
	return s
}
