package store

import (
	"context"
	"errors"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

// MonthlyCount is one (year, month) aggregation bucket.
type MonthlyCount struct {
	Year  int
	Month time.Month
	Count int
}

// JobStore is the record store the handlers operate over. List returns
// one page of matching records plus the total match count independent of
// paging. MonthlyCounts returns at most limit buckets ordered newest
// first; buckets with no records are absent.
type JobStore interface {
	Create(ctx context.Context, job domain.Job) error
	Get(ctx context.Context, id string) (domain.Job, bool, error)
	Update(ctx context.Context, job domain.Job) (domain.Job, error)
	Delete(ctx context.Context, id string) (domain.Job, error)
	List(ctx context.Context, filter JobFilter, order SortOrder, page Page) ([]domain.Job, int, error)
	CountByStatus(ctx context.Context, createdBy string) (map[string]int, error)
	MonthlyCounts(ctx context.Context, createdBy string, limit int) ([]MonthlyCount, error)
	CountAll(ctx context.Context) (int, error)
}
