package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
)

// MemoryJobStore keeps job records in a map. It backs tests and runs
// without Postgres; its query semantics match PostgresJobStore.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[string]domain.Job),
	}
}

func (s *MemoryJobStore) Create(_ context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (domain.Job, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok, nil
}

func (s *MemoryJobStore) Update(_ context.Context, job domain.Job) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return domain.Job{}, ErrJobNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	s.jobs[job.ID] = job
	return job, nil
}

func (s *MemoryJobStore) Delete(_ context.Context, id string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}
	delete(s.jobs, id)
	return job, nil
}

func (s *MemoryJobStore) List(_ context.Context, filter JobFilter, order SortOrder, page Page) ([]domain.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Job, 0)
	for _, job := range s.jobs {
		if filter.Matches(job) {
			matched = append(matched, job)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return order.Less(matched[i], matched[j])
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryJobStore) CountByStatus(_ context.Context, createdBy string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, job := range s.jobs {
		if job.CreatedBy == createdBy {
			counts[job.JobStatus]++
		}
	}
	return counts, nil
}

func (s *MemoryJobStore) MonthlyCounts(_ context.Context, createdBy string, limit int) ([]MonthlyCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type bucket struct {
		year  int
		month time.Month
	}
	counts := make(map[bucket]int)
	for _, job := range s.jobs {
		if job.CreatedBy != createdBy {
			continue
		}
		created := job.CreatedAt.UTC()
		counts[bucket{created.Year(), created.Month()}]++
	}

	months := make([]MonthlyCount, 0, len(counts))
	for b, count := range counts {
		months = append(months, MonthlyCount{Year: b.year, Month: b.month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	if limit > 0 && len(months) > limit {
		months = months[:limit]
	}
	return months, nil
}

func (s *MemoryJobStore) CountAll(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs), nil
}
