package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jobtrack/jobtrack/internal/auth"
	"github.com/jobtrack/jobtrack/internal/queue"
	"github.com/jobtrack/jobtrack/internal/store"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Server struct {
	logger      *zap.SugaredLogger
	jobs        store.JobStore
	users       store.UserStore
	tokens      *auth.TokenManager
	avatars     AvatarStorage
	events      EventEnqueuer
	rateLimiter RateLimiter
	metrics     *metrics
	tracer      trace.Tracer
	demoUserID  string
	mux         *http.ServeMux
}

// EventEnqueuer pushes job lifecycle events onto the delivery queue.
type EventEnqueuer interface {
	EnqueueJobEvent(ctx context.Context, payload queue.JobEventPayload) (*asynq.TaskInfo, error)
}

// AvatarStorage persists profile images in the object store.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error)
	AvatarURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	RemoveAvatar(ctx context.Context, objectKey string) error
}

// Deps wires the server's collaborators. Avatars, Events, RateLimiter and
// Tracer may be nil; the corresponding feature degrades gracefully.
type Deps struct {
	Jobs        store.JobStore
	Users       store.UserStore
	Tokens      *auth.TokenManager
	Avatars     AvatarStorage
	Events      EventEnqueuer
	RateLimiter RateLimiter
	Tracer      trace.Tracer
	DemoUserID  string
}

func NewServer(logger *zap.SugaredLogger, deps Deps) *Server {
	avatars := deps.Avatars
	if avatars == nil {
		avatars = unavailableAvatarStorage{}
	}

	s := &Server{
		logger:      logger,
		jobs:        deps.Jobs,
		users:       deps.Users,
		tokens:      deps.Tokens,
		avatars:     avatars,
		events:      deps.Events,
		rateLimiter: deps.RateLimiter,
		metrics:     newMetrics(),
		tracer:      deps.Tracer,
		demoUserID:  deps.DemoUserID,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

type unavailableAvatarStorage struct{}

func (unavailableAvatarStorage) UploadAvatar(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("avatar storage is unavailable")
}

func (unavailableAvatarStorage) AvatarURL(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("avatar storage is unavailable")
}

func (unavailableAvatarStorage) RemoveAvatar(context.Context, string) error {
	return errors.New("avatar storage is unavailable")
}

func (s *Server) Handler() http.Handler {
	return s.withTracing(s.metrics.withHTTPMetrics(s.withRateLimit(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.metricsHandler())

	s.mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/v1/auth/logout", s.handleLogout)

	s.mux.HandleFunc("GET /api/v1/jobs", s.authenticated(s.handleListJobs))
	s.mux.HandleFunc("POST /api/v1/jobs", s.authenticated(s.handleCreateJob))
	s.mux.HandleFunc("GET /api/v1/jobs/stats", s.authenticated(s.handleShowStats))
	s.mux.HandleFunc("GET /api/v1/jobs/{id}", s.authenticated(s.handleGetJob))
	s.mux.HandleFunc("PATCH /api/v1/jobs/{id}", s.authenticated(s.handleUpdateJob))
	s.mux.HandleFunc("DELETE /api/v1/jobs/{id}", s.authenticated(s.handleDeleteJob))

	s.mux.HandleFunc("GET /api/v1/users/current-user", s.authenticated(s.handleCurrentUser))
	s.mux.HandleFunc("PATCH /api/v1/users/update-user", s.authenticated(s.handleUpdateUser))
	s.mux.HandleFunc("GET /api/v1/users/admin/app-stats", s.authenticated(s.requireAdmin(s.handleAppStats)))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, into any) error {
	const maxBodyBytes = 1 << 20
	limited := io.LimitReader(r.Body, maxBodyBytes)
	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON body: multiple JSON values are not allowed")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
