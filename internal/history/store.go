package history

import (
	"sort"
	"sync"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// Store is the ordered, most-recent-first timeline of one order.
type Store struct {
	orderID string

	mu      sync.RWMutex
	entries []domain.OrderHistoryEntry
	ids     map[string]struct{}
}

// NewStore creates an empty store bound to orderID for its lifetime.
func NewStore(orderID string) *Store {
	return &Store{
		orderID: orderID,
		ids:     make(map[string]struct{}),
	}
}

// OrderID returns the bound order id.
func (s *Store) OrderID() string {
	return s.orderID
}

// Initialize replaces the contents. Entries for other orders are skipped.
func (s *Store) Initialize(entries []domain.OrderHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]domain.OrderHistoryEntry, 0, len(entries))
	s.ids = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.OrderID != s.orderID {
			continue
		}
		s.entries = append(s.entries, e)
		if e.ID != "" {
			s.ids[e.ID] = struct{}{}
		}
	}
}

// Prepend inserts entry at the head. It is a no-op returning false when the
// entry belongs to another order or its id is already present.
func (s *Store) Prepend(entry domain.OrderHistoryEntry) bool {
	if entry.OrderID != s.orderID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID != "" {
		if _, dup := s.ids[entry.ID]; dup {
			return false
		}
		s.ids[entry.ID] = struct{}{}
	}

	next := make([]domain.OrderHistoryEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	s.entries = append(next, s.entries...)
	return true
}

// Snapshot returns a copy of the current timeline.
func (s *Store) Snapshot() []domain.OrderHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OrderHistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SortNewestFirst returns a copy of entries ordered by OccurredAt descending.
// Ties keep their fetched order.
func SortNewestFirst(entries []domain.OrderHistoryEntry) []domain.OrderHistoryEntry {
	out := make([]domain.OrderHistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out
}
