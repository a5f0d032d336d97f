package runs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps runs in process. Like the Redis store, a record expires ttl after its
// last write; ttl <= 0 keeps records forever.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("run id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	s.pruneLocked(now)
	if _, ok := s.recs[rec.ID]; ok {
		return fmt.Errorf("run %q already exists", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.recs[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	rec, ok := s.recs[id]
	if !ok || s.expired(rec, now) {
		delete(s.recs, id)
		return ErrNotFound
	}
	fn(&rec)
	rec.ID = id
	rec.UpdatedAt = now
	s.recs[id] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok || s.expired(rec, s.now().UTC()) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Len reports how many records are held, expired ones included until the next prune.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

func (s *MemoryStore) expired(rec Record, now time.Time) bool {
	return s.ttl > 0 && !now.Before(rec.UpdatedAt.Add(s.ttl))
}

// pruneLocked drops expired records. Called on Create so the map is bounded by the
// number of runs written within one ttl.
func (s *MemoryStore) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, rec := range s.recs {
		if s.expired(rec, now) {
			delete(s.recs, id)
		}
	}
}
