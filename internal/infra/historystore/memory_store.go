package historystore

import (
	"context"
	"sync"

	"github.com/yanqian/property-valuator/internal/domain/valuation"
)

// MemoryStore keeps the latest evaluations in a fixed-size ring.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []valuation.HistoryEntry
	next     int
	size     int
	capacity int
}

// NewMemoryStore constructs a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = valuation.HistoryCapacity
	}
	return &MemoryStore{
		entries:  make([]valuation.HistoryEntry, capacity),
		capacity: capacity,
	}
}

// Append implements valuation.HistoryStore. The oldest entry is overwritten once full.
func (s *MemoryStore) Append(_ context.Context, entry valuation.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % s.capacity
	if s.size < s.capacity {
		s.size++
	}
	return nil
}

// Recent implements valuation.HistoryStore.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]valuation.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > s.size {
		limit = s.size
	}
	out := make([]valuation.HistoryEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.entries[idx])
	}
	return out, nil
}

// Len reports how many entries are retained.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

var _ valuation.HistoryStore = (*MemoryStore)(nil)
