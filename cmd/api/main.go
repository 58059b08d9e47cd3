package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jobtrack/jobtrack/internal/api"
	"github.com/jobtrack/jobtrack/internal/auth"
	"github.com/jobtrack/jobtrack/internal/config"
	"github.com/jobtrack/jobtrack/internal/queue"
	"github.com/jobtrack/jobtrack/internal/ratelimit"
	"github.com/jobtrack/jobtrack/internal/storage"
	"github.com/jobtrack/jobtrack/internal/store"
	"github.com/jobtrack/jobtrack/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
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
	logger := zapLogger.Sugar().Named("api")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "jobtrack-api",
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	}, logger)
	if err != nil {
		logger.Fatalf("tracing setup failed: %v", err)
	}

	db, err := store.OpenPostgres(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("postgres connection failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	jobStore, err := store.NewPostgresJobStore(ctx, db)
	if err != nil {
		logger.Fatalf("job store setup failed: %v", err)
	}
	userStore, err := store.NewPostgresUserStore(ctx, db)
	if err != nil {
		logger.Fatalf("user store setup failed: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatalf("token manager setup failed: %v", err)
	}

	deps := api.Deps{
		Jobs:       jobStore,
		Users:      userStore,
		Tokens:     tokens,
		Tracer:     otel.Tracer("jobtrack/api"),
		DemoUserID: cfg.Auth.DemoUserID,
	}

	avatarClient, err := storage.NewClient(storage.Config{
		Endpoint: cfg.Storage.Endpoint,
		Access:   cfg.Storage.AccessKey,
		Secret:   cfg.Storage.SecretKey,
		Bucket:   cfg.Storage.Bucket,
		UseSSL:   cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Errorf("avatar storage unavailable: %v", err)
	} else if err := avatarClient.EnsureBucket(ctx); err != nil {
		logger.Errorf("avatar bucket setup failed: %v", err)
	} else {
		deps.Avatars = avatarClient
	}

	if cfg.Webhook.Endpoint != "" {
		queueClient := queue.NewClient(cfg.Queue.RedisClientOpt(), cfg.Queue.Name)
		defer func() {
			if err := queueClient.Close(); err != nil {
				logger.Errorf("queue client close error: %v", err)
			}
		}()
		deps.Events = queueClient
	}

	if cfg.RateLimit.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		limiter, err := ratelimit.NewRedisFixedWindow(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window, "")
		if err != nil {
			logger.Errorf("rate limiter setup failed: %v", err)
		} else {
			deps.RateLimiter = limiter
		}
	}

	app := api.NewServer(logger, deps)

	httpServer := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.API.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("tracing shutdown failed: %v", err)
	}
}
