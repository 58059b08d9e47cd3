package worker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jobtrack/jobtrack/internal/config"
	"github.com/jobtrack/jobtrack/internal/queue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Server consumes job lifecycle events from the queue and delivers them
// to the configured integration endpoint as signed webhooks.
type Server struct {
	logger   *zap.SugaredLogger
	server   *asynq.Server
	sender   webhookSender
	endpoint string
	metrics  *metrics
	tracer   trace.Tracer
}

type webhookSender interface {
	Send(ctx context.Context, endpoint, event string, payload any) error
}

func NewServer(
	logger *zap.SugaredLogger,
	queueCfg config.QueueConfig,
	workerCfg config.WorkerConfig,
	sender webhookSender,
	endpoint string,
) (*Server, error) {
	if sender == nil {
		return nil, fmt.Errorf("webhook sender is required")
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}

	concurrency := workerCfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	s := &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: concurrency,
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.Errorf("task failed type=%s retry=%d/%d err=%v", task.Type(), retried, maxRetry, err)
				}),
			},
		),
		sender:   sender,
		endpoint: endpoint,
		metrics:  newMetrics(),
		tracer:   otel.Tracer("jobtrack/worker"),
	}
	return s, nil
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeJobEvent, s.handleJobEvent)
	return s.server.Run(mux)
}

func (s *Server) MetricsHandler() http.Handler {
	return s.metrics.Handler()
}

func (s *Server) handleJobEvent(ctx context.Context, task *asynq.Task) error {
	startedAt := time.Now()
	outcome := "failed"

	payload, err := queue.ParseJobEventPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, span := s.tracer.Start(ctx, "worker.deliver_job_event", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(
		attribute.String("job.id", payload.Job.ID),
		attribute.String("job.event", payload.Event),
	)
	defer span.End()
	defer func() {
		s.metrics.deliveryDuration.WithLabelValues(payload.Event, outcome).Observe(time.Since(startedAt).Seconds())
		s.metrics.deliveriesTotal.WithLabelValues(payload.Event, outcome).Inc()
	}()

	s.logger.Infof("delivering event=%s job_id=%s", payload.Event, payload.Job.ID)

	if err := s.sender.Send(ctx, s.endpoint, payload.Event, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook delivery failed")
		return fmt.Errorf("deliver job event: %w", err)
	}

	outcome = "delivered"
	span.SetStatus(codes.Ok, "delivered")
	return nil
}
