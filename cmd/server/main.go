package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/handlers"
	"github.com/wanderlist/wanderlist/internal/lists"
	"github.com/wanderlist/wanderlist/internal/logger"
	"github.com/wanderlist/wanderlist/internal/middleware"
	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/internal/queue"
	"github.com/wanderlist/wanderlist/internal/services/session"
	"github.com/wanderlist/wanderlist/internal/suggest"
	"github.com/wanderlist/wanderlist/internal/telemetry"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "wanderlist-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for the preference analysis queue (required)
	// Retry connection with exponential backoff to handle RabbitMQ startup delays
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue queue.JobQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			break
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

	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}

	// Initialize repositories
	listRepo := database.NewListRepository(db)
	listRepo.SetLogger(zapLogger)
	prefRepo := database.NewPreferenceRepository(db)
	activityRepo := database.NewUserActivityRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Every membership change taints the owner's preference statistics and
	// schedules a debounced analysis job to rebuild them.
	listRepo.SetMembershipChangeHandler(func(ctx context.Context, userID uuid.UUID) error {
		zapLogger.Debug("membership_change_handler_invoked",
			zap.String("user_id", userID.String()),
		)

		var markTaintedErr error
		if _, err := prefRepo.MarkTainted(ctx, userID); err != nil {
			zapLogger.Warn("failed_to_mark_preference_statistics_tainted",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			markTaintedErr = err
			// Continue to enqueue the job despite this error to avoid inconsistent state
		}

		// Always enqueue the analysis job when membership changes, even if
		// MarkTainted failed. The job rebuilds statistics from scratch, so
		// the system self-heals; duplicate jobs are harmless.
		job := queue.NewJob(queue.JobTypePreferenceAnalysis, userID, nil)
		debounceDelay := 5 * time.Second
		notBefore := time.Now().Add(debounceDelay)
		job.NotBefore = &notBefore
		if err := jobQueue.Enqueue(ctx, job); err != nil {
			zapLogger.Error("failed_to_enqueue_preference_analysis_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			if markTaintedErr != nil {
				return errors.Join(markTaintedErr, fmt.Errorf("failed to enqueue preference analysis job: %w", err))
			}
			return fmt.Errorf("failed to enqueue preference analysis job: %w", err)
		}
		zapLogger.Info("enqueued_preference_analysis_job",
			zap.String("user_id", userID.String()),
			zap.Duration("debounce_delay", debounceDelay),
		)

		// If only MarkTainted failed but the job was enqueued, the job will
		// eventually update statistics and clear the tainted state.
		return nil
	})

	// Initialize services
	jwksManager := session.NewJWKSManager()
	verifier := session.NewVerifier(jwksManager, cfg.SessionIssuer, cfg.SessionAudience)

	engineCfg := suggest.DefaultConfig()
	engineCfg.MaxSuggestions = cfg.MaxSuggestions
	engineCfg.CacheTTL = cfg.SuggestionCacheTTL
	engine, err := suggest.NewEngine(engineCfg, prefRepo, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_suggestion_engine", zap.Error(err))
	}

	reconciler := lists.NewReconciler(listRepo, zapLogger)
	placesClient := places.NewClient(cfg.PlacesAPIURL, cfg.PlacesAPIKey, zapLogger)

	// Initialize handlers
	healthChecker := handlers.NewHealthChecker(db, jobQueue, redisLimiter)
	suggestionHandler := handlers.NewSuggestionHandler(engine)
	listHandler := handlers.NewListHandler(listRepo, reconciler)
	placeHandler := handlers.NewPlaceHandler(placesClient)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	// OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("wanderlist-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	// Security headers (should be set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// CORS (load from DB, hot-reload; fallback to FRONTEND_URL)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())
	// Rate limit middleware (applied selectively to specific routes, not globally)
	rateLimitReloader := middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()
	// Request size limits
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// Request timeout
	r.Use(middleware.Timeout(30 * time.Second))
	// Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// Audit logging (for security events)
	r.Use(middleware.Audit(zapLogger))
	// Logging (innermost, executes last before handler)
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// OpenAPI spec (public)
	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	authMW := middleware.Auth(db, verifier, cfg.SessionJWKSURL, zapLogger)
	optionalAuthMW := middleware.OptionalAuth(db, verifier, cfg.SessionJWKSURL, zapLogger)
	activityMW := middleware.ActivityTracking(activityRepo, zapLogger)

	// Suggestions (anonymous callers get the default set)
	suggestionsRouter := apiRouter.NewRoute().Subrouter()
	suggestionsRouter.Use(optionalAuthMW)
	suggestionsRouter.Use(rateLimitMW)
	suggestionsRouter.Use(activityMW)
	suggestionHandler.RegisterRoutes(suggestionsRouter)

	// List routes (protected)
	listsRouter := apiRouter.PathPrefix("/lists").Subrouter()
	listsRouter.Use(authMW)
	listsRouter.Use(rateLimitMW)
	listsRouter.Use(activityMW)
	listHandler.RegisterRoutes(listsRouter)

	// Place membership routes (protected); registered before the discovery
	// routes so /places/{placeID}/lists matches here first
	membershipRouter := apiRouter.PathPrefix("/places").Subrouter()
	membershipRouter.Use(authMW)
	membershipRouter.Use(rateLimitMW)
	membershipRouter.Use(activityMW)
	listHandler.RegisterPlaceRoutes(membershipRouter)

	// Place discovery routes (anonymous allowed)
	discoveryRouter := apiRouter.PathPrefix("/places").Subrouter()
	discoveryRouter.Use(optionalAuthMW)
	discoveryRouter.Use(rateLimitMW)
	discoveryRouter.Use(activityMW)
	placeHandler.RegisterRoutes(discoveryRouter)

	// Catch-all OPTIONS handler for preflight requests; the CORS middleware
	// has already set the headers by the time this runs
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// CORS and rate limit hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	// Background inactivity checker
	activityTracker := middleware.NewActivityTracker(activityRepo, zapLogger)
	go activityTracker.Start(reloadCtx)

	// Start DLQ garbage collector if the queue implementation supports it
	// Run every hour, retain messages for 24 hours
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, zapLogger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
