// Package router assembles the HTTP surface: routes, middleware order, and
// the JSON 404/405 handlers.
package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pawcare/pawcare-api/internal/database"
	"github.com/pawcare/pawcare-api/internal/handlers"
	"github.com/pawcare/pawcare-api/internal/middleware"
	"github.com/pawcare/pawcare-api/internal/queue"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// Options holds everything the router wires together. Chat and Logger are
// required; every other collaborator is optional.
type Options struct {
	Logger *zap.Logger
	Chat   handlers.ChatResponder

	// Reports and Jobs enable the health report routes when both are set
	Reports database.ReportStore
	Jobs    queue.Publisher

	Health      *handlers.HealthChecker
	OpenAPIPath string

	FrontendURL    string
	EnableHSTS     bool
	RequestTimeout time.Duration

	// Applied to /api routes, outermost first
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler

	// ServiceName enables otelmux spans when non-empty
	ServiceName string
}

// New builds the API handler
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = handlers.MethodNotAllowedHandler()
	r.NotFoundHandler = handlers.NotFoundHandler()

	// gorilla/mux runs middleware in registration order, first registered outermost
	if opts.ServiceName != "" {
		r.Use(otelmux.Middleware(opts.ServiceName))
	}
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Audit(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.RequestID)

	// Public routes
	health := opts.Health
	if health == nil {
		health = handlers.NewHealthChecker()
	}
	r.HandleFunc("/healthz", health.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.VersionInfo).Methods(http.MethodGet)
	handlers.NewOpenAPIHandler(opts.OpenAPIPath).RegisterRoutes(r)

	api := r.PathPrefix("/api").Subrouter()
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}
	if opts.RateLimit != nil {
		api.Use(opts.RateLimit)
	}

	chat := handlers.NewChatHandler(opts.Chat, logger)
	chat.RegisterRoutes(api)

	v1 := api.PathPrefix("/v1").Subrouter()
	chat.RegisterRoutes(v1)

	if opts.Reports != nil && opts.Jobs != nil {
		// Chat checks its own Content-Type so every chat failure stays a 500
		reports := v1.NewRoute().Subrouter()
		reports.Use(middleware.ContentType)
		handlers.NewReportHandler(opts.Reports, opts.Jobs, logger).RegisterRoutes(reports)
	} else {
		logger.Info("report_routes_disabled",
			zap.Bool("store_configured", opts.Reports != nil),
			zap.Bool("queue_configured", opts.Jobs != nil),
		)
	}

	// Outside mux so 404/405 responses and preflights get headers too
	var h http.Handler = r
	h = middleware.CORS(opts.FrontendURL)(h)
	h = middleware.SecurityHeaders(opts.EnableHSTS)(h)
	return h
}
