package view

import "sync"

// ListState is the reconciliation state of an OptimisticList.
type ListState int

const (
	// Synced means the list is exactly what the last poll returned.
	Synced ListState = iota
	// PendingMutation means a local edit was applied after that poll.
	PendingMutation
)

func (s ListState) String() string {
	switch s {
	case Synced:
		return "synced"
	case PendingMutation:
		return "pending"
	default:
		return "unknown"
	}
}

// OptimisticList holds a keyed collection that local commands may edit
// ahead of the backend. The next Replace discards those edits: the poll
// is authoritative and edits are never merged into it.
type OptimisticList[T any] struct {
	mu    sync.Mutex
	key   func(T) string
	items []T
	state ListState
}

func NewOptimisticList[T any](key func(T) string) *OptimisticList[T] {
	return &OptimisticList[T]{key: key, items: []T{}}
}

// Replace installs a polled collection and returns to Synced.
func (l *OptimisticList[T]) Replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(make([]T, 0, len(items)), items...)
	l.state = Synced
}

// Remove drops the first entry with key k. It reports whether an entry
// was removed; the list is PendingMutation afterwards either way.
func (l *OptimisticList[T]) Remove(k string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = PendingMutation
	for i, it := range l.items {
		if l.key(it) == k {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every entry and returns how many there were.
func (l *OptimisticList[T]) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.items)
	l.items = []T{}
	l.state = PendingMutation
	return n
}

// Items returns a copy of the current entries.
func (l *OptimisticList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(make([]T, 0, len(l.items)), l.items...)
}

func (l *OptimisticList[T]) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *OptimisticList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
