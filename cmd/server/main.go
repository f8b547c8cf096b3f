package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawcare/pawcare-api/internal/config"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/handlers"
	"github.com/pawcare/pawcare-api/internal/logger"
	"github.com/pawcare/pawcare-api/internal/middleware"
	"github.com/pawcare/pawcare-api/internal/queue"
	"github.com/pawcare/pawcare-api/internal/router"
	"github.com/pawcare/pawcare-api/internal/services/ai"
	"github.com/pawcare/pawcare-api/internal/services/auth"
	"github.com/pawcare/pawcare-api/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dlqInterval  = 1 * time.Hour
	dlqRetention = 24 * time.Hour
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

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("server", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceName := ""
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(ctx, telemetry.ServiceName, handlers.Version, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				serviceName = telemetry.ServiceName
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	health := handlers.NewHealthChecker()

	// Postgres backs chat history, reports and the rate limit setting
	var (
		history     database.ChatHistoryStore = database.NewMemoryChatHistory(0)
		reports     database.ReportStore
		rateLimitDB database.RatelimitConfigStore
	)
	if cfg.DatabaseURL != "" {
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

		history = database.NewChatHistoryRepository(db)
		reports = database.NewReportRepository(db)
		rateLimitDB = database.NewRatelimitConfigRepository(db)
		health.AddCheck("database", db.HealthCheck)
	} else {
		zapLogger.Info("database_not_configured_using_memory_history")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
		health.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue = connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		health.AddCheck("rabbitmq", jobQueue.HealthCheck)
	}

	provider, err := ai.DefaultRegistry().GetProvider(cfg.AIProvider, cfg.ProviderSettings(debugMode), zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_ai_provider", zap.Error(err))
	}
	zapLogger.Info("initialized_ai_provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", provider.Model()),
	)

	chatService := ai.NewChatService(provider, ai.ChatOptions{
		History:     history,
		Timeout:     cfg.ChatTimeout,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Logger:      zapLogger,
	})

	store, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	var rateLimitMW func(http.Handler) http.Handler
	if rateLimitDB != nil {
		reloader := middleware.NewRateLimitReloader(store, rateLimitDB, cfg.RateLimit, zapLogger, middleware.DefaultReloadInterval)
		if reloader == nil {
			zapLogger.Fatal("failed_to_create_rate_limit_reloader")
		}
		go reloader.Start(ctx)
		rateLimitMW = reloader.Middleware()
	} else {
		rateLimitMW, err = middleware.RateLimit(store, cfg.RateLimit)
		if err != nil {
			zapLogger.Fatal("invalid_rate_limit", zap.String("rate", cfg.RateLimit), zap.Error(err))
		}
	}

	var authMW func(http.Handler) http.Handler
	if cfg.AuthJWKSURL != "" {
		verifier := auth.NewVerifier(auth.NewJWKSManager(auth.DefaultJWKSTTL), cfg.AuthJWKSURL, cfg.AuthIssuer, cfg.AuthAudience)
		authMW = middleware.Auth(verifier, zapLogger)
		zapLogger.Info("auth_enabled", zap.String("issuer", cfg.AuthIssuer))
	} else {
		zapLogger.Warn("auth_disabled_no_jwks_url")
	}

	opts := router.Options{
		Logger:         zapLogger,
		Chat:           chatService,
		Health:         health,
		OpenAPIPath:    cfg.OpenAPIPath,
		FrontendURL:    cfg.FrontendURL,
		EnableHSTS:     cfg.EnableHSTS,
		RequestTimeout: cfg.RequestTimeout,
		Auth:           authMW,
		RateLimit:      rateLimitMW,
		ServiceName:    serviceName,
	}
	// Reports need a shared store; the worker runs in another process
	if reports != nil && jobQueue != nil {
		opts.Reports = reports
		opts.Jobs = jobQueue
	}
	handler := router.New(opts)

	if purger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(purger, dlqInterval, dlqRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", dlqInterval),
			zap.Duration("retention", dlqRetention),
		)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ retries with exponential backoff while the broker starts up
func connectRabbitMQ(url string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}
