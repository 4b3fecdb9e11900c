package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Record is the per-identity window state. It is valid only while
// now - WindowStart <= window; an expired record is replaced, never
// incremented.
type Record struct {
	Count       int
	WindowStart time.Time
}

func (r Record) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.WindowStart) > window
}

// Store is the rate limit table. Implementations need not be atomic across
// Get and Set: two near-simultaneous requests from one identity may both
// be admitted.
type Store interface {
	Get(ctx context.Context, identity string) (Record, bool, error)
	Set(ctx context.Context, identity string, rec Record) error
	Sweep(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

// MemoryStore keeps records in process memory. Each instance of the
// service has its own table, lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) Get(_ context.Context, identity string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	return rec, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, identity string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[identity] = rec
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for identity, rec := range s.records {
		if rec.Expired(now, window) {
			delete(s.records, identity)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
