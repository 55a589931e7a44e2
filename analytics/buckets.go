package analytics

import (
	"sort"
	"strings"

	"github.com/rustyeddy/traderdash/backend"
)

// Category is the coarse strategy family a bucket label belongs to.
type Category string

const (
	Warrior Category = "WARRIOR"
	Swing   Category = "SWING"
	Options Category = "OPTIONS"
	Manual  Category = "MANUAL"
	Unknown Category = "UNKNOWN"
)

type keywordGroup struct {
	category Category
	keywords []string
}

// Checked in order; the first group with a matching keyword wins.
var keywordGroups = []keywordGroup{
	{Warrior, []string{"warrior", "day", "scalp", "sniper", "vwap", "momentum"}},
	{Swing, []string{"swing", "elite", "ema", "rsi", "buffett", "congress"}},
	{Options, []string{"option", "condor", "straddle", "spread"}},
	{Manual, []string{"manual", "seeded"}},
}

// Bucket is a classified strategy label. Name is the category for known
// families and the uppercased label otherwise.
type Bucket struct {
	Name     string
	Category Category
}

// Classify maps a free-form bucket label to a Bucket. Matching is a
// case-insensitive substring test.
func Classify(label string) Bucket {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(l, kw) {
				return Bucket{Name: string(g.category), Category: g.category}
			}
		}
	}
	name := strings.ToUpper(strings.TrimSpace(label))
	if name == "" {
		name = string(Unknown)
	}
	return Bucket{Name: name, Category: Unknown}
}

// BucketStats is Stats restricted to one bucket.
type BucketStats struct {
	Bucket Bucket
	Stats  Stats
}

// ByBucket computes Stats per classified bucket. Known categories come
// first in declaration order, then unknown labels sorted by name.
// Buckets with no closed trades are omitted.
func ByBucket(entries []backend.JournalEntry) []BucketStats {
	groups := map[string][]backend.JournalEntry{}
	buckets := map[string]Bucket{}
	for _, e := range entries {
		b := Classify(e.Bucket)
		groups[b.Name] = append(groups[b.Name], e)
		buckets[b.Name] = b
	}

	rank := func(b Bucket) int {
		for i, g := range keywordGroups {
			if g.category == b.Category {
				return i
			}
		}
		return len(keywordGroups)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(buckets[names[i]]), rank(buckets[names[j]])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	out := make([]BucketStats, 0, len(names))
	for _, name := range names {
		st := Compute(groups[name])
		if st.Trades == 0 {
			continue
		}
		out = append(out, BucketStats{Bucket: buckets[name], Stats: st})
	}
	return out
}
