package meeting

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps reservations in process memory. Suitable for single-node
// deployments and tests; expired entries are dropped lazily on access.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]Record),
		now:  time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.recs[rec.Code]; ok && !old.Expired(s.now()) {
		return ErrCodeTaken
	}
	s.recs[rec.Code] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, code string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[code]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Expired(s.now()) {
		delete(s.recs, code)
		return Record{}, ErrNotFound
	}
	return rec, nil
}
