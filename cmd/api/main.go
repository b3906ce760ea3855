package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refund-service/config"
	apidocs "refund-service/docs/api"
	"refund-service/internal/adapter/gateway/midtrans"
	httpHandler "refund-service/internal/adapter/http/handler"
	"refund-service/internal/adapter/queue"
	"refund-service/internal/adapter/storage/cache"
	pgStorage "refund-service/internal/adapter/storage/postgres"
	redisStorage "refund-service/internal/adapter/storage/redis"
	"refund-service/internal/core/ports"
	"refund-service/internal/service"
	"refund-service/pkg/logger"
	"refund-service/pkg/tracing"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithFile(cfg.Log.Level, cfg.Log.Pretty, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Int("period_days", cfg.Refund.PeriodDays).
		Msg("Starting refund service")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Repositories
	refundRepo := pgStorage.NewRefundRepo(pool)
	profileRepo := pgStorage.NewProfileRepo(pool)
	ledger := pgStorage.NewSubscriptionLedger(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	profiles := cache.NewProfileCache(profileRepo, cfg.Cache.ProfileTTL)

	// Redis stores
	refundLock := redisStorage.NewRefundLock(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Background work goes through asynq on the same Redis.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer queueClient.Close()
	enqueuer := queue.NewEnqueuer(queueClient, queue.RetryPolicy{
		NotifyMaxRetry: cfg.Queue.NotifyMaxRetry,
		CancelMaxRetry: cfg.Queue.CancelMaxRetry,
	}, log)

	// Services
	gateway := midtrans.NewGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.Production, ledger, log)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authGate := service.NewAuthorizationGate(profileRepo, log)
	auditSvc := service.NewAuditService(auditRepo, log)
	workflow := service.NewRefundWorkflow(
		refundRepo,
		gateway,
		ledger,
		enqueuer,
		enqueuer,
		refundLock,
		profiles,
		authGate,
		service.RefundPolicy{
			PeriodDays:     cfg.Refund.PeriodDays,
			GatewayTimeout: cfg.Refund.GatewayTimeout,
			LockTTL:        cfg.Refund.LockTTL,
		},
		log,
	)

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Workflow:       workflow,
		Authorizer:     authGate,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		OpenAPISpec:    apidocs.OpenAPI,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// In-flight refunds finish before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Refund.GatewayTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown failed")
	}

	log.Info().Msg("Server exited")
}
