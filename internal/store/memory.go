package store

import (
	"sync"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory holder of the latest aggregation.
type MemoryStore struct {
	mu sync.RWMutex

	// issued is the highest sequence number handed out by Next.
	issued  uint64
	current *weather.Result
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Next issues a new, strictly increasing submission sequence number.
func (s *MemoryStore) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	return s.issued
}

// Install replaces the current result with r, but only if r was produced for
// the latest issued sequence number. The swap is atomic for readers.
func (s *MemoryStore) Install(r weather.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Seq == 0 || r.Seq != s.issued {
		return false
	}
	if s.current != nil && s.current.Seq >= r.Seq {
		return false
	}

	s.current = &r
	return true
}

// Current returns the installed result.
func (s *MemoryStore) Current() (weather.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return weather.Result{}, false
	}
	return *s.current, true
}
