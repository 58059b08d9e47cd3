package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(t *testing.T, s *MemoryJobStore, job domain.Job) {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), job))
}

func TestListPaginatesIndependentlyOfTotal(t *testing.T) {
	s := NewMemoryJobStore()
	for i := 0; i < 15; i++ {
		seedJob(t, s, domain.Job{
			ID:        fmt.Sprintf("job-%02d", i),
			Company:   "Acme",
			Position:  fmt.Sprintf("Role %02d", i),
			JobStatus: domain.JobStatusPending,
			JobType:   domain.JobTypeFullTime,
			CreatedBy: "user-1",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}

	jobs, total, err := s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortNewest, Page{Number: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, jobs, 5)

	// Out-of-range pages return empty results, never an error.
	jobs, total, err = s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortNewest, Page{Number: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, jobs)
}

func TestListScopesToOwner(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{ID: "mine", CreatedBy: "user-1", Position: "Dev", Company: "A"})
	seedJob(t, s, domain.Job{ID: "theirs", CreatedBy: "user-2", Position: "Dev", Company: "A"})

	jobs, total, err := s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortNewest, Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "mine", jobs[0].ID)
}

func TestListSearchIsCaseInsensitiveSubstring(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{ID: "a", CreatedBy: "user-1", Company: "Acme Corp", Position: "Dev"})
	seedJob(t, s, domain.Job{ID: "b", CreatedBy: "user-1", Company: "Other", Position: "Dev"})

	filter := JobFilter{CreatedBy: "user-1"}.WithSearch("acme")
	jobs, total, err := s.List(context.Background(), filter, SortNewest, Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].ID)
}

func TestListSearchTreatsMetacharactersLiterally(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{ID: "literal", CreatedBy: "user-1", Company: "Acme", Position: "100% remote"})
	seedJob(t, s, domain.Job{ID: "decoy", CreatedBy: "user-1", Company: "Acme", Position: "100 Engineers"})

	filter := JobFilter{CreatedBy: "user-1"}.WithSearch("100%")
	jobs, total, err := s.List(context.Background(), filter, SortNewest, Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "literal", jobs[0].ID)
}

func TestListSortOrders(t *testing.T) {
	s := NewMemoryJobStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	positions := []string{"Banker", "Analyst", "Clerk"}
	for i, pos := range positions {
		seedJob(t, s, domain.Job{
			ID:        fmt.Sprintf("job-%d", i),
			CreatedBy: "user-1",
			Company:   "Acme",
			Position:  pos,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}

	page := Page{Number: 1, Limit: 10}

	jobs, _, err := s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortAZ, page)
	require.NoError(t, err)
	for i := 1; i < len(jobs); i++ {
		assert.LessOrEqual(t, jobs[i-1].Position, jobs[i].Position)
	}

	jobs, _, err = s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortZA, page)
	require.NoError(t, err)
	for i := 1; i < len(jobs); i++ {
		assert.GreaterOrEqual(t, jobs[i-1].Position, jobs[i].Position)
	}

	jobs, _, err = s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortNewest, page)
	require.NoError(t, err)
	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i-1].CreatedAt.Before(jobs[i].CreatedAt))
	}

	jobs, _, err = s.List(context.Background(), JobFilter{CreatedBy: "user-1"}, SortOldest, page)
	require.NoError(t, err)
	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i-1].CreatedAt.After(jobs[i].CreatedAt))
	}
}

func TestListFilterComposition(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{
		ID: "match", CreatedBy: "user-1", Company: "Acme", Position: "Dev",
		JobStatus: domain.JobStatusInterview, JobType: domain.JobTypeRemote,
	})
	seedJob(t, s, domain.Job{
		ID: "wrong-status", CreatedBy: "user-1", Company: "Acme", Position: "Dev",
		JobStatus: domain.JobStatusPending, JobType: domain.JobTypeRemote,
	})
	seedJob(t, s, domain.Job{
		ID: "wrong-type", CreatedBy: "user-1", Company: "Acme", Position: "Dev",
		JobStatus: domain.JobStatusInterview, JobType: domain.JobTypeFullTime,
	})

	filter := JobFilter{CreatedBy: "user-1"}.
		WithSearch("acme").
		WithStatus(domain.JobStatusInterview).
		WithType(domain.JobTypeRemote)
	jobs, total, err := s.List(context.Background(), filter, SortNewest, Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "match", jobs[0].ID)
}

func TestCountByStatus(t *testing.T) {
	s := NewMemoryJobStore()
	statuses := []string{domain.JobStatusPending, domain.JobStatusPending, domain.JobStatusInterview}
	for i, status := range statuses {
		seedJob(t, s, domain.Job{ID: fmt.Sprintf("job-%d", i), CreatedBy: "user-1", JobStatus: status})
	}
	seedJob(t, s, domain.Job{ID: "other", CreatedBy: "user-2", JobStatus: domain.JobStatusDeclined})

	counts, err := s.CountByStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.JobStatusPending])
	assert.Equal(t, 1, counts[domain.JobStatusInterview])
	assert.Zero(t, counts[domain.JobStatusDeclined])
}

func TestMonthlyCountsTruncatesToNewestWindow(t *testing.T) {
	s := NewMemoryJobStore()
	// Eight months spanning a year boundary, one extra record in the
	// newest month.
	for i := 0; i < 8; i++ {
		created := time.Date(2023, time.Month(10)+time.Month(i), 15, 0, 0, 0, 0, time.UTC)
		seedJob(t, s, domain.Job{ID: fmt.Sprintf("job-%d", i), CreatedBy: "user-1", CreatedAt: created})
	}
	seedJob(t, s, domain.Job{
		ID: "extra", CreatedBy: "user-1",
		CreatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	})

	months, err := s.MonthlyCounts(context.Background(), "user-1", 6)
	require.NoError(t, err)
	require.Len(t, months, 6)

	// Newest first, strictly descending, no duplicates.
	for i := 1; i < len(months); i++ {
		prev := time.Date(months[i-1].Year, months[i-1].Month, 1, 0, 0, 0, 0, time.UTC)
		curr := time.Date(months[i].Year, months[i].Month, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, prev.After(curr))
	}
	assert.Equal(t, 2024, months[0].Year)
	assert.Equal(t, time.May, months[0].Month)
	assert.Equal(t, 2, months[0].Count)
	assert.Equal(t, 2023, months[5].Year)
	assert.Equal(t, time.December, months[5].Month)
}

func TestMonthlyCountsDoesNotPadMissingMonths(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{ID: "a", CreatedBy: "user-1", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	seedJob(t, s, domain.Job{ID: "b", CreatedBy: "user-1", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)})

	months, err := s.MonthlyCounts(context.Background(), "user-1", 6)
	require.NoError(t, err)
	assert.Len(t, months, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	s := NewMemoryJobStore()
	seedJob(t, s, domain.Job{ID: "job-1", CreatedBy: "user-1", Position: "Dev", JobStatus: domain.JobStatusPending})

	job, ok, err := s.Get(context.Background(), "job-1")
	require.NoError(t, err)
	require.True(t, ok)

	job.JobStatus = domain.JobStatusInterview
	updated, err := s.Update(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInterview, updated.JobStatus)
	assert.False(t, updated.UpdatedAt.IsZero())

	removed, err := s.Delete(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", removed.ID)

	_, err = s.Delete(context.Background(), "job-1")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = s.Update(context.Background(), job)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
