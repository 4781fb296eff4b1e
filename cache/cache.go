// Package cache is a process-wide memoization layer with a fixed time to
// live per store. Entries are created on miss, served while fresh, and
// recomputed on the first hit after expiry. There is no eviction beyond
// expiry and no invalidation on writes: readers accept results stale by up
// to one TTL.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    interface{}
	storedAt time.Time
}

// Store memoizes results by key. The mutex only guards the map itself;
// concurrent misses on the same key may each run the loader, last write wins
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// New makes a store whose entries live for ttl
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Do returns the cached value for key if it is still fresh, otherwise calls
// load and stores the result. Loader errors are returned as-is and never
// cached
func (s *Store) Do(key string, load func() (interface{}, error)) (interface{}, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && time.Since(e.storedAt) < s.ttl {
		s.mu.Unlock()
		return e.value, nil
	}
	s.mu.Unlock()

	value, err := load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, storedAt: time.Now()}
	s.mu.Unlock()
	return value, nil
}

// Get reports the cached value for key if it is still fresh
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Since(e.storedAt) >= s.ttl {
		return nil, false
	}
	return e.value, true
}

// Flush drops every entry. Only tests use this
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}
