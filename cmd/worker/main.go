package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/jobtrack/jobtrack/internal/config"
	"github.com/jobtrack/jobtrack/internal/webhook"
	"github.com/jobtrack/jobtrack/internal/worker"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := zapLogger.Sugar().Named("worker")

	sender := webhook.NewClient(webhook.Config{
		SigningSecret: cfg.Webhook.SigningSecret,
		Timeout:       10 * time.Second,
		MaxAttempts:   3,
		Backoff:       time.Second,
	})

	srv, err := worker.NewServer(logger, cfg.Queue, cfg.Worker, sender, cfg.Webhook.Endpoint)
	if err != nil {
		logger.Fatalf("worker setup failed: %v", err)
	}

	go func() {
		logger.Infof("worker metrics on %s", cfg.Worker.MetricsAddr)
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", srv.MetricsHandler())
		if err := http.ListenAndServe(cfg.Worker.MetricsAddr, mux); err != nil {
			logger.Errorf("metrics server failed: %v", err)
		}
	}()

	logger.Infof(
		"starting worker concurrency=%d queue=%s redis=%s endpoint=%s",
		cfg.Worker.Concurrency,
		cfg.Queue.Name,
		cfg.Queue.RedisAddr,
		cfg.Webhook.Endpoint,
	)
	if err := srv.Run(); err != nil {
		logger.Fatalf("worker failed: %v", err)
	}
}
