package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawcare/pawcare-api/internal/config"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/queue"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"github.com/pawcare/pawcare-api/internal/services/summary"
	"github.com/pawcare/pawcare-api/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireAI(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.DatabaseURL == "" || cfg.RabbitMQURL == "" {
		log.Fatalf("The worker requires DATABASE_URL and RABBITMQ_URL")
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("worker", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	provider, err := ai.DefaultRegistry().GetProvider(cfg.AIProvider, cfg.ProviderSettings(debugMode), zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_ai_provider", zap.Error(err))
	}
	zapLogger.Info("initialized_ai_provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", provider.Model()),
	)

	writer := ai.NewReportService(provider, summary.NewBuilder(), cfg.ChatTimeout, zapLogger)
	generator := workers.NewReportGenerator(writer, database.NewReportRepository(db), zapLogger)

	dlqGC := queue.NewGarbageCollector(jobQueue, time.Hour, 24*time.Hour, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	msgs, errs, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	zapLogger.Info("worker_started")

	workers.Run(ctx, msgs, cfg.RabbitMQPrefetch, func(ctx context.Context, msg *queue.Message) error {
		return generator.ProcessJob(ctx, msg)
	}, zapLogger)

	zapLogger.Info("worker_stopped")
}
