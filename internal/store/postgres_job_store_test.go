package store

import (
	"testing"

	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestListWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    JobFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "owner only",
			filter:    JobFilter{CreatedBy: "user-1"},
			wantWhere: "created_by = $1",
			wantArgs:  []any{"user-1"},
		},
		{
			name:      "search adds a disjoined clause",
			filter:    JobFilter{CreatedBy: "user-1"}.WithSearch("acme"),
			wantWhere: `created_by = $1 AND (position ILIKE $2 ESCAPE '\' OR company ILIKE $2 ESCAPE '\')`,
			wantArgs:  []any{"user-1", "%acme%"},
		},
		{
			name: "all clauses conjoined in order",
			filter: JobFilter{CreatedBy: "user-1"}.
				WithSearch("acme").
				WithStatus(domain.JobStatusPending).
				WithType(domain.JobTypeRemote),
			wantWhere: `created_by = $1 AND (position ILIKE $2 ESCAPE '\' OR company ILIKE $2 ESCAPE '\') AND job_status = $3 AND job_type = $4`,
			wantArgs:  []any{"user-1", "%acme%", domain.JobStatusPending, domain.JobTypeRemote},
		},
		{
			name:      "like metacharacters are escaped to literals",
			filter:    JobFilter{CreatedBy: "user-1"}.WithSearch("100%"),
			wantWhere: `created_by = $1 AND (position ILIKE $2 ESCAPE '\' OR company ILIKE $2 ESCAPE '\')`,
			wantArgs:  []any{"user-1", `%100\%%`},
		},
		{
			name: "sentinels add nothing",
			filter: JobFilter{CreatedBy: "user-1"}.
				WithSearch("").
				WithStatus(FilterAll).
				WithType(FilterAll),
			wantWhere: "created_by = $1",
			wantArgs:  []any{"user-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := listWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, "acme", escapeLike("acme"))
}

func TestSortClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", sortClause(SortNewest))
	assert.Equal(t, "created_at ASC", sortClause(SortOldest))
	assert.Equal(t, "position ASC", sortClause(SortAZ))
	assert.Equal(t, "position DESC", sortClause(SortZA))
	assert.Equal(t, "created_at DESC", sortClause(SortOrder(99)))
}
