package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kidani/kidani-backend/internal/types"
)

// JobStore owns every job record. The orchestrator holds job IDs only and
// mutates through Update; the status endpoint reads through Get. Records are
// replaced whole under the lock, so readers never observe a torn record.
type JobStore interface {
	Create() types.Job
	Get(id string) (types.Job, bool)
	Update(id string, mutate func(*types.Job))
}

type memoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]types.Job
}

// NewMemoryJobStore returns the in-process store. Jobs live for the process
// lifetime; there is no eviction and nothing survives a restart.
func NewMemoryJobStore() JobStore {
	return &memoryJobStore{
		jobs: make(map[string]types.Job),
	}
}

func (s *memoryJobStore) Create() types.Job {
	now := time.Now().UTC()
	job := types.Job{
		ID:        uuid.NewString(),
		Status:    types.JobStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

func (s *memoryJobStore) Get(id string) (types.Job, bool) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	return job, ok
}

func (s *memoryJobStore) Update(id string, mutate func(*types.Job)) {
	if mutate == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	mutate(&job)
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
}
