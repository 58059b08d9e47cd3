package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
)

const jobSchemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	company TEXT NOT NULL,
	position TEXT NOT NULL,
	job_location TEXT NOT NULL,
	job_status TEXT NOT NULL,
	job_type TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS jobs_created_by_idx ON jobs (created_by);
`

const jobColumns = "id, company, position, job_location, job_status, job_type, created_by, created_at, updated_at"

type PostgresJobStore struct {
	db *sql.DB
}

func NewPostgresJobStore(ctx context.Context, db *sql.DB) (*PostgresJobStore, error) {
	store := &PostgresJobStore{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresJobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, jobSchemaSQL); err != nil {
		return fmt.Errorf("ensure jobs schema: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) Create(ctx context.Context, job domain.Job) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID,
		job.Company,
		job.Position,
		job.JobLocation,
		job.JobStatus,
		job.JobType,
		job.CreatedBy,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) Get(ctx context.Context, id string) (domain.Job, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	)
	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Job{}, false, nil
		}
		return domain.Job{}, false, fmt.Errorf("query job: %w", err)
	}
	return job, true, nil
}

func (s *PostgresJobStore) Update(ctx context.Context, job domain.Job) (domain.Job, error) {
	job.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs
		 SET company = $1, position = $2, job_location = $3, job_status = $4, job_type = $5, updated_at = $6
		 WHERE id = $7`,
		job.Company,
		job.Position,
		job.JobLocation,
		job.JobStatus,
		job.JobType,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return domain.Job{}, fmt.Errorf("update job: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.Job{}, ErrJobNotFound
	}
	return job, nil
}

func (s *PostgresJobStore) Delete(ctx context.Context, id string) (domain.Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`DELETE FROM jobs WHERE id = $1 RETURNING `+jobColumns,
		id,
	)
	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Job{}, ErrJobNotFound
		}
		return domain.Job{}, fmt.Errorf("delete job: %w", err)
	}
	return job, nil
}

func (s *PostgresJobStore) List(ctx context.Context, filter JobFilter, order SortOrder, page Page) ([]domain.Job, int, error) {
	where, args := listWhere(filter)

	var total int
	if err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM jobs WHERE `+where,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM jobs WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		jobColumns, where, sortClause(order), len(args)+1, len(args)+2,
	)
	args = append(args, page.Limit, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0, page.Limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, total, nil
}

func (s *PostgresJobStore) CountByStatus(ctx context.Context, createdBy string) (map[string]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT job_status, COUNT(*) FROM jobs WHERE created_by = $1 GROUP BY job_status`,
		createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresJobStore) MonthlyCounts(ctx context.Context, createdBy string, limit int) ([]MonthlyCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT EXTRACT(YEAR FROM created_at)::int AS year,
		        EXTRACT(MONTH FROM created_at)::int AS month,
		        COUNT(*)
		 FROM jobs
		 WHERE created_by = $1
		 GROUP BY year, month
		 ORDER BY year DESC, month DESC
		 LIMIT $2`,
		createdBy,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("count jobs by month: %w", err)
	}
	defer rows.Close()

	months := make([]MonthlyCount, 0, limit)
	for rows.Next() {
		var (
			year, month, count int
		)
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, fmt.Errorf("scan monthly count: %w", err)
		}
		months = append(months, MonthlyCount{Year: year, Month: time.Month(month), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly counts: %w", err)
	}
	return months, nil
}

func (s *PostgresJobStore) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count all jobs: %w", err)
	}
	return total, nil
}

// listWhere renders the filter's active clauses as a conjoined WHERE body
// with positional args.
func listWhere(filter JobFilter) (string, []any) {
	clauses := []string{"created_by = $1"}
	args := []any{filter.CreatedBy}

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(`(position ILIKE $%d ESCAPE '\' OR company ILIKE $%d ESCAPE '\')`, n, n))
	}
	if filter.JobStatus != "" {
		args = append(args, filter.JobStatus)
		clauses = append(clauses, fmt.Sprintf("job_status = $%d", len(args)))
	}
	if filter.JobType != "" {
		args = append(args, filter.JobType)
		clauses = append(clauses, fmt.Sprintf("job_type = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so the search term matches
// as a literal substring, the same way JobFilter.Matches does in memory.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func sortClause(order SortOrder) string {
	switch order {
	case SortOldest:
		return "created_at ASC"
	case SortAZ:
		return "position ASC"
	case SortZA:
		return "position DESC"
	default:
		return "created_at DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.JobLocation,
		&job.JobStatus,
		&job.JobType,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}
