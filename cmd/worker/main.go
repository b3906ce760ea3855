package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refund-service/config"
	"refund-service/internal/adapter/notify/email"
	"refund-service/internal/adapter/notify/events"
	"refund-service/internal/adapter/queue"
	"refund-service/internal/adapter/storage/cache"
	pgStorage "refund-service/internal/adapter/storage/postgres"
	"refund-service/internal/service"
	"refund-service/pkg/logger"
	"refund-service/pkg/tracing"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithFile(cfg.Log.Level, cfg.Log.Pretty, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}).With().Str("component", "worker").Logger()

	log.Info().
		Int("concurrency", cfg.Queue.Concurrency).
		Msg("Starting refund worker")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName + "-worker",
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	publisher, err := events.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer publisher.Close()
	log.Info().Str("stream", cfg.NATS.Stream).Msg("NATS JetStream connected")

	profiles := cache.NewProfileCache(pgStorage.NewProfileRepo(pool), cfg.Cache.ProfileTTL)
	mailer := email.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, log)
	delivery := service.NewNotificationService(profiles, mailer, publisher, log)
	ledger := pgStorage.NewSubscriptionLedger(pool)

	mux := queue.NewServeMux(
		queue.NewNotifyHandler(delivery, log),
		queue.NewCancelSubscriptionHandler(ledger, log),
	)

	srv := queue.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Queue.Concurrency, log)

	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker failed to start")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down worker...")

	// Shutdown waits for active tasks; unfinished ones go back to the queue.
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown failed")
	}

	log.Info().Msg("Worker exited")
}
