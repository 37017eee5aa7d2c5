package jobstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/loryanstrant/azure-openai-sora-webserver/internal/domain"
)

// Store is a bounded, concurrent-safe in-memory map of video jobs keyed by
// job id. Job state is volatile; a restart loses all history.
type Store struct {
	mu       sync.RWMutex
	capacity int
	jobs     map[string]*domain.VideoJob
}

// New creates a store that targets at most capacity records. Non-terminal
// jobs are never evicted, so the store can temporarily exceed the target
// while every record is still in flight.
func New(capacity int) *Store {
	return &Store{
		capacity: capacity,
		jobs:     make(map[string]*domain.VideoJob),
	}
}

// Put inserts a new record. A colliding id is an internal invariant
// violation, not a user-facing condition.
func (s *Store) Put(job *domain.VideoJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateJob, job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the record so callers never alias store-owned state.
func (s *Store) Get(id string) (*domain.VideoJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to the record under the store lock and bumps UpdatedAt,
// so a concurrent Get never observes a partially applied transition.
func (s *Store) Update(id string, fn func(*domain.VideoJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// EvictIfOverCapacity removes terminal records, oldest created first, until
// the store is back at or under capacity. It returns the number removed.
func (s *Store) EvictIfOverCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) <= s.capacity {
		return 0
	}

	terminal := make([]*domain.VideoJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.Status.Terminal() {
			terminal = append(terminal, job)
		}
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].CreatedAt.Before(terminal[j].CreatedAt)
	})

	removed := 0
	for _, job := range terminal {
		if len(s.jobs) <= s.capacity {
			break
		}
		delete(s.jobs, job.ID)
		removed++
	}
	return removed
}

// SweepStale removes terminal records whose last update is older than
// maxAge, independent of capacity pressure. It returns the number removed.
func (s *Store) SweepStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}
