package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobtrack/jobtrack/internal/domain"
	"github.com/jobtrack/jobtrack/internal/id"
	"github.com/jobtrack/jobtrack/internal/queue"
	"github.com/jobtrack/jobtrack/internal/store"
)

type listJobsResponse struct {
	TotalJobs     int          `json:"totalJobs"`
	NumberOfPages int          `json:"numberOfPages"`
	CurrentPage   int          `json:"currentPage"`
	Jobs          []domain.Job `json:"job"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())
	q := r.URL.Query()

	filter := store.JobFilter{CreatedBy: ident.UserID}.
		WithSearch(q.Get("search")).
		WithStatus(q.Get("jobStatus")).
		WithType(q.Get("jobType"))
	order := store.ParseSortOrder(q.Get("sort"))
	page := pageFromQuery(q)

	jobs, total, err := s.jobs.List(r.Context(), filter, order, page)
	if err != nil {
		s.logger.Errorf("list jobs failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	writeJSON(w, http.StatusOK, listJobsResponse{
		TotalJobs:     total,
		NumberOfPages: store.PageCount(total, page.Limit),
		CurrentPage:   page.Number,
		Jobs:          jobs,
	})
}

// pageFromQuery reads page and limit, falling back to the defaults for
// missing or non-numeric values before normalizing.
func pageFromQuery(q url.Values) store.Page {
	page := store.Page{
		Number: store.DefaultPageNumber,
		Limit:  store.DefaultPageLimit,
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Number = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		page.Limit = n
	}
	return page.Normalize()
}

type defaultStats struct {
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
	Declined  int `json:"declined"`
}

type monthlyApplication struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type statsResponse struct {
	DefaultStats        defaultStats         `json:"defaultStats"`
	MonthlyApplications []monthlyApplication `json:"monthlyApplications"`
}

const monthlyWindow = 6

func (s *Server) handleShowStats(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())

	byStatus, err := s.jobs.CountByStatus(r.Context(), ident.UserID)
	if err != nil {
		s.logger.Errorf("count jobs by status failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	months, err := s.jobs.MonthlyCounts(r.Context(), ident.UserID, monthlyWindow)
	if err != nil {
		s.logger.Errorf("count jobs by month failed for user %s: %v", ident.UserID, err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	// Months arrive newest-first; reverse so the histogram reads
	// chronologically. Months with no applications are not padded in.
	monthly := make([]monthlyApplication, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		label := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
		monthly = append(monthly, monthlyApplication{Date: label, Count: m.Count})
	}

	writeJSON(w, http.StatusOK, statsResponse{
		DefaultStats: defaultStats{
			Pending:   byStatus[domain.JobStatusPending],
			Interview: byStatus[domain.JobStatusInterview],
			Declined:  byStatus[domain.JobStatusDeclined],
		},
		MonthlyApplications: monthly,
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())
	if s.rejectDemo(w, ident) {
		return
	}

	var input domain.JobInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input = input.Normalized()

	now := time.Now().UTC()
	job := input.Apply(domain.Job{
		ID:        id.New(),
		CreatedBy: ident.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err := s.jobs.Create(r.Context(), job); err != nil {
		s.logger.Errorf("create job failed for job %s: %v", job.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	s.dispatchJobEvent(r, queue.EventJobCreated, job)
	writeJSON(w, http.StatusCreated, map[string]any{"job": job})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())
	if s.rejectDemo(w, ident) {
		return
	}

	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	var input domain.JobInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.jobs.Update(r.Context(), input.Normalized().Apply(job))
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "no job with id "+job.ID)
			return
		}
		s.logger.Errorf("update job failed for job %s: %v", job.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to update job")
		return
	}

	s.dispatchJobEvent(r, queue.EventJobUpdated, updated)
	writeJSON(w, http.StatusOK, map[string]any{"msg": "job modified", "job": updated})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromContext(r.Context())
	if s.rejectDemo(w, ident) {
		return
	}

	job, ok := s.ownedJob(w, r)
	if !ok {
		return
	}

	removed, err := s.jobs.Delete(r.Context(), job.ID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "no job with id "+job.ID)
			return
		}
		s.logger.Errorf("delete job failed for job %s: %v", job.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}

	s.dispatchJobEvent(r, queue.EventJobDeleted, removed)
	writeJSON(w, http.StatusOK, map[string]any{"msg": "job deleted", "job": removed})
}

// ownedJob loads the id-addressed record and enforces ownership: only the
// owner or an admin may pass. Failures are written to the response.
func (s *Server) ownedJob(w http.ResponseWriter, r *http.Request) (domain.Job, bool) {
	ident, _ := identityFromContext(r.Context())
	jobID := r.PathValue("id")

	job, found, err := s.jobs.Get(r.Context(), jobID)
	if err != nil {
		s.logger.Errorf("fetch job failed for job %s: %v", jobID, err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return domain.Job{}, false
	}
	if !found {
		writeError(w, http.StatusNotFound, "no job with id "+jobID)
		return domain.Job{}, false
	}
	if job.CreatedBy != ident.UserID && ident.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "not authorized to access this job")
		return domain.Job{}, false
	}
	return job, true
}

// dispatchJobEvent enqueues a lifecycle event for the integration worker.
// Delivery is best effort; enqueue failures never fail the request.
func (s *Server) dispatchJobEvent(r *http.Request, event string, job domain.Job) {
	if s.events == nil {
		return
	}
	payload := queue.JobEventPayload{
		Event:      event,
		Job:        job,
		OccurredAt: time.Now().UTC(),
	}
	if _, err := s.events.EnqueueJobEvent(r.Context(), payload); err != nil {
		s.logger.Errorf("enqueue %s failed for job %s: %v", event, job.ID, err)
		return
	}
	s.metrics.eventsEnqueued.WithLabelValues(event).Inc()
}
