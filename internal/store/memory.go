package store

import (
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MemoryStore is a concurrency-safe, bounded, newest-first search history.
// Records live in a fixed ring; once full, each append overwrites the oldest.
type MemoryStore struct {
	mu sync.RWMutex

	ring []weather.SearchRecord
	head int // index of the newest record
	size int
}

// NewMemoryStore creates a store retaining at most maxHistory records.
// If maxHistory is <= 0, weather.MaxHistory is used.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = weather.MaxHistory
	}
	return &MemoryStore{
		ring: make([]weather.SearchRecord, maxHistory),
		head: -1,
	}
}

// Cap returns the retention bound.
func (s *MemoryStore) Cap() int {
	return len(s.ring)
}

// Append inserts record at the head, evicting the oldest when full.
func (s *MemoryStore) Append(record weather.SearchRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.head = (s.head + 1) % len(s.ring)
	s.ring[s.head] = record
	if s.size < len(s.ring) {
		s.size++
	}
}

// Query returns up to filter.Limit of the newest records whose city contains
// filter.CityContains case-insensitively, plus the total number of matches.
func (s *MemoryStore) Query(filter weather.HistoryFilter) ([]weather.SearchRecord, int) {
	limit := filter.Limit
	if limit <= 0 {
		limit = weather.DefaultHistoryLimit
	}
	needle := weather.FoldCity(filter.CityContains)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.SearchRecord, 0, min(limit, s.size))
	total := 0
	for i := 0; i < s.size; i++ {
		r := s.at(i)
		if needle != "" && !strings.Contains(r.CityKey(), needle) {
			continue
		}
		total++
		if len(out) < limit {
			out = append(out, r)
		}
	}
	return out, total
}

// Clear empties the store. Calling it on an empty store is a no-op.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.ring)
	s.head = -1
	s.size = 0
}

// All returns a copy of every retained record, newest first.
func (s *MemoryStore) All() []weather.SearchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.SearchRecord, s.size)
	for i := range out {
		out[i] = s.at(i)
	}
	return out
}

// Len returns the number of retained records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// at returns the i-th newest record. Callers must hold the lock.
func (s *MemoryStore) at(i int) weather.SearchRecord {
	n := len(s.ring)
	return s.ring[((s.head-i)%n+n)%n]
}
