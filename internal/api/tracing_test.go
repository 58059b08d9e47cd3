package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jobtrack/jobtrack/internal/auth"
	"github.com/jobtrack/jobtrack/internal/store"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestWithTracingRecordsRouteAndStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	server := NewServer(zap.NewNop().Sugar(), Deps{
		Jobs:   store.NewMemoryJobStore(),
		Users:  store.NewMemoryUserStore(),
		Tokens: tokens,
		Tracer: tp.Tracer("test"),
	})

	// An unauthenticated list request still produces a span with the
	// collapsed route and the written status code.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/some-id", nil)
	server.Handler().ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "GET /api/v1/jobs/{id}" {
		t.Fatalf("expected span name with collapsed route, got %q", span.Name)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["http.route"].AsString(); got != "/api/v1/jobs/{id}" {
		t.Fatalf("expected collapsed route attribute, got %q", got)
	}
	if got := attrs["http.target"].AsString(); got != "/api/v1/jobs/some-id" {
		t.Fatalf("expected raw target attribute, got %q", got)
	}
	if got := attrs["http.status_code"].AsInt64(); got != http.StatusUnauthorized {
		t.Fatalf("expected status 401 on the span, got %d", got)
	}
}
