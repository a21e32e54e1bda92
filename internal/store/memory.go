package store

import (
	"sort"
	"sync"
	"time"

	"github.com/qs3c/aiseo_go_server/internal/model"
)

// MemoryStore 进程内任务存储（默认实现）。单进程、易失，与设计约定一致。
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.QueryJob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*model.QueryJob),
	}
}

func (s *MemoryStore) Create(job *model.QueryJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrJobExists
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryStore) Get(id string) (*model.QueryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Update(id string, mutate func(job *model.QueryJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	mutate(job)
	return nil
}

func (s *MemoryStore) List(limit int) ([]*model.QueryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*model.QueryJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *MemoryStore) Prune(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, job := range s.jobs {
		// 进行中的任务不回收
		if job.Terminal() && job.CreatedAt.Before(before) {
			delete(s.jobs, id)
			pruned++
		}
	}
	return pruned, nil
}
