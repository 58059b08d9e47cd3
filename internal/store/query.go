package store

import (
	"strings"

	"github.com/jobtrack/jobtrack/internal/domain"
)

// FilterAll is the sentinel a client sends to leave a status or type
// restriction out of the query.
const FilterAll = "all"

// JobFilter selects the records a list or aggregation query may see.
// CreatedBy is always enforced; the other fields add clauses only when
// populated by one of the With methods. The zero value of each optional
// field means "no restriction".
type JobFilter struct {
	CreatedBy string
	Search    string
	JobStatus string
	JobType   string
}

// WithSearch returns a copy restricted to records whose position or
// company contains the given text, case-insensitively. Blank input adds
// no clause.
func (f JobFilter) WithSearch(search string) JobFilter {
	f.Search = strings.TrimSpace(search)
	return f
}

// WithStatus returns a copy restricted to an exact status. Blank input
// and the "all" sentinel add no clause.
func (f JobFilter) WithStatus(status string) JobFilter {
	if status == "" || status == FilterAll {
		f.JobStatus = ""
		return f
	}
	f.JobStatus = status
	return f
}

// WithType returns a copy restricted to an exact job type, with the same
// sentinel handling as WithStatus.
func (f JobFilter) WithType(jobType string) JobFilter {
	if jobType == "" || jobType == FilterAll {
		f.JobType = ""
		return f
	}
	f.JobType = jobType
	return f
}

// Matches reports whether a record satisfies every active clause.
func (f JobFilter) Matches(job domain.Job) bool {
	for _, clause := range f.clauses() {
		if !clause(job) {
			return false
		}
	}
	return true
}

func (f JobFilter) clauses() []func(domain.Job) bool {
	clauses := []func(domain.Job) bool{
		func(job domain.Job) bool { return job.CreatedBy == f.CreatedBy },
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		clauses = append(clauses, func(job domain.Job) bool {
			return strings.Contains(strings.ToLower(job.Position), needle) ||
				strings.Contains(strings.ToLower(job.Company), needle)
		})
	}
	if f.JobStatus != "" {
		clauses = append(clauses, func(job domain.Job) bool { return job.JobStatus == f.JobStatus })
	}
	if f.JobType != "" {
		clauses = append(clauses, func(job domain.Job) bool { return job.JobType == f.JobType })
	}
	return clauses
}

// SortOrder is the closed set of orderings the list endpoint understands.
type SortOrder int

const (
	SortNewest SortOrder = iota // createdAt descending
	SortOldest                  // createdAt ascending
	SortAZ                      // position ascending
	SortZA                      // position descending
)

// ParseSortOrder resolves a client sort key. Unknown or empty keys fall
// back to newest-first.
func ParseSortOrder(key string) SortOrder {
	switch key {
	case "oldest":
		return SortOldest
	case "a-z":
		return SortAZ
	case "z-a":
		return SortZA
	default:
		return SortNewest
	}
}

func (o SortOrder) String() string {
	switch o {
	case SortOldest:
		return "oldest"
	case SortAZ:
		return "a-z"
	case SortZA:
		return "z-a"
	default:
		return "newest"
	}
}

// Less reports whether a sorts before b. Position comparisons are
// case-sensitive byte order.
func (o SortOrder) Less(a, b domain.Job) bool {
	switch o {
	case SortOldest:
		return a.CreatedAt.Before(b.CreatedAt)
	case SortAZ:
		return a.Position < b.Position
	case SortZA:
		return a.Position > b.Position
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

const (
	DefaultPageNumber = 1
	DefaultPageLimit  = 10
)

// Page is a one-based page request.
type Page struct {
	Number int
	Limit  int
}

// Normalize substitutes the defaults for degenerate input: pages below 1
// become page 1 and non-positive limits become the default limit.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = DefaultPageNumber
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// Offset is the number of records to skip before this page starts.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// PageCount is ceil(total/limit) for a normalized (positive) limit.
func PageCount(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
