package view

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rustyeddy/traderdash/backend"
)

const lastScanKey = "scan:last"

// ScanRun is one completed scan.
type ScanRun struct {
	Results backend.ScanResults
	At      time.Time

	// first candidate per symbol, in section order
	bySymbol map[string]backend.ScanCandidate
}

// Candidate looks up symbol in this run. A symbol listed in several
// sections resolves to the one in the first section by name.
func (r ScanRun) Candidate(symbol string) (backend.ScanCandidate, bool) {
	c, ok := r.bySymbol[symbolKey(symbol)]
	return c, ok
}

// ScanCache keeps the most recent scan for ttl so it can be shown again
// without re-running the scanner.
type ScanCache struct {
	c *cache.Cache
}

func NewScanCache(ttl time.Duration) *ScanCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ScanCache{c: cache.New(ttl, 2*ttl)}
}

// Put replaces the latest scan with res.
func (s *ScanCache) Put(res backend.ScanResults, at time.Time) {
	run := ScanRun{Results: res, At: at, bySymbol: map[string]backend.ScanCandidate{}}
	for _, section := range res.Sections() {
		for _, cand := range res[section] {
			key := symbolKey(cand.Symbol)
			if key == "" {
				continue
			}
			if _, seen := run.bySymbol[key]; !seen {
				run.bySymbol[key] = cand
			}
		}
	}
	s.c.SetDefault(lastScanKey, run)
}

// Last returns the latest scan if it has not expired.
func (s *ScanCache) Last() (ScanRun, bool) {
	v, ok := s.c.Get(lastScanKey)
	if !ok {
		return ScanRun{}, false
	}
	run, ok := v.(ScanRun)
	return run, ok
}

// Candidate looks up symbol in the latest scan.
func (s *ScanCache) Candidate(symbol string) (backend.ScanCandidate, bool) {
	run, ok := s.Last()
	if !ok {
		return backend.ScanCandidate{}, false
	}
	return run.Candidate(symbol)
}

// Flush forgets the cached scan.
func (s *ScanCache) Flush() { s.c.Flush() }

func symbolKey(sym string) string {
	return strings.ToUpper(strings.TrimSpace(sym))
}
