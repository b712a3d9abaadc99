package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/handlers"
	"github.com/mytrainer/mytrainer-api/internal/logger"
	"github.com/mytrainer/mytrainer-api/internal/middleware"
	"github.com/mytrainer/mytrainer-api/internal/notify"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
	"github.com/mytrainer/mytrainer-api/internal/schedule"
	"github.com/mytrainer/mytrainer-api/internal/telemetry"
)

const (
	rabbitMaxRetries   = 10
	rabbitInitialDelay = 2 * time.Second
	rabbitMaxDelay     = 30 * time.Second

	dlqGCInterval  = 1 * time.Hour
	dlqGCRetention = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("Starting server",
		zap.Bool("debug_mode", debugMode),
		zap.String("port", cfg.ServerPort),
		zap.String("timezone", cfg.SchedulerTimezone),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry tracing (optional)
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, "mytrainer-api", cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("Failed to initialize tracing, continuing without it", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Warn("Failed to shut down tracer provider", zap.Error(err))
				}
			}()
			zapLogger.Info("Tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.InitSchema(ctx); err != nil {
		zapLogger.Fatal("Failed to initialize database schema", zap.Error(err))
	}
	zapLogger.Info("Connected to database")

	// Redis (rate limiting)
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// RabbitMQ with exponential backoff; brokers often start after the API in
	// container environments
	jobQueue, err := connectQueueWithRetry(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()
	zapLogger.Info("Connected to RabbitMQ")

	// Repositories
	profileRepo := database.NewProfileRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	deviceRepo := database.NewDeviceRepository(db)

	// Schedule generator
	generator := schedule.NewGenerator(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	if generator.FallbackMode() {
		zapLogger.Warn("OPENAI_API_KEY not set, schedule generation runs in fallback mode")
	}

	// Notification transports
	var pushT *notify.PushTransport
	if cfg.FirebaseConfigured() {
		pushT, err = notify.NewPushTransport(ctx, cfg.FirebaseCredsFile, zapLogger)
		if err != nil {
			zapLogger.Warn("Failed to initialize push transport, push disabled", zap.Error(err))
			pushT = nil
		}
	}
	var smsT *notify.SMSTransport
	if cfg.TwilioConfigured() {
		smsT = notify.NewSMSTransport(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, zapLogger)
	}
	dispatcher := buildDispatcher(zapLogger, pushT, smsT)

	// Reminder scheduler
	scheduler := reminders.NewScheduler(&queue.ReminderEnqueuer{Queue: jobQueue}, zapLogger, cfg.SchedulerTimezone)
	if err := scheduler.Start(); err != nil {
		zapLogger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	rearmStoredSchedules(ctx, scheduleRepo, settingsRepo, scheduler, zapLogger)

	// Handlers
	healthChecker := handlers.NewHealthChecker(db, redisClient, jobQueue, deviceRepo, scheduler)
	scheduleHandler := handlers.NewScheduleHandler(profileRepo, scheduleRepo, settingsRepo, generator, scheduler, zapLogger)
	notificationHandler := handlers.NewNotificationHandler(deviceRepo, settingsRepo, scheduleRepo, dispatcher, pushT, smsT, jobQueue, scheduler, zapLogger)
	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))

	rateLimitMW, err := middleware.RateLimit(redisClient, "5-S")
	if err != nil {
		zapLogger.Fatal("Failed to initialize rate limiter", zap.Error(err))
	}

	// Router and middleware chain. Order matters: security headers and CORS
	// run before body limits so error responses carry them too.
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("mytrainer-api"))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(1 << 20))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/health", healthChecker.HealthCheck).Methods("GET")
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	scheduleRouter := apiRouter.PathPrefix("/schedule").Subrouter()
	scheduleRouter.Use(rateLimitMW)
	scheduleHandler.RegisterRoutes(scheduleRouter)

	notificationRouter := apiRouter.PathPrefix("/notifications").Subrouter()
	notificationRouter.Use(rateLimitMW)
	notificationHandler.RegisterRoutes(notificationRouter)

	// Preflight catch-all so CORS middleware can answer OPTIONS on any path
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, req)
	})

	// DLQ garbage collection
	gc := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqGCRetention, zapLogger)
	go func() {
		if err := gc.Start(ctx); err != nil && ctx.Err() == nil {
			zapLogger.Error("DLQ garbage collector stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutdown signal received, stopping server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("Server stopped")
}

// connectQueueWithRetry dials RabbitMQ with exponential backoff
func connectQueueWithRetry(amqpURL string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	delay := rabbitInitialDelay
	for attempt := 1; attempt <= rabbitMaxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			return jobQueue, nil
		}

		if attempt == rabbitMaxRetries {
			return nil, fmt.Errorf("failed after %d attempts: %w", rabbitMaxRetries, err)
		}

		zapLogger.Warn("RabbitMQ connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
		delay *= 2
		if delay > rabbitMaxDelay {
			delay = rabbitMaxDelay
		}
	}
	return nil, fmt.Errorf("unreachable")
}

// buildDispatcher assembles the dispatcher from whichever transports are
// configured. Transports that did not initialize are simply absent.
func buildDispatcher(zapLogger *zap.Logger, pushT *notify.PushTransport, smsT *notify.SMSTransport) *notify.Dispatcher {
	var transports []notify.Transport
	if pushT != nil {
		transports = append(transports, pushT)
	}
	if smsT != nil {
		transports = append(transports, smsT)
	}
	dispatcher := notify.NewDispatcher(zapLogger, transports...)
	zapLogger.Info("Notification dispatcher ready", zap.Int("transports", dispatcher.Transports()))
	return dispatcher
}

// rearmStoredSchedules re-registers cron reminders for every user with a
// stored schedule. Scheduler state lives in memory, so a restart would
// otherwise drop all reminders.
func rearmStoredSchedules(
	ctx context.Context,
	scheduleRepo database.ScheduleRepositoryInterface,
	settingsRepo database.SettingsRepositoryInterface,
	scheduler *reminders.Scheduler,
	zapLogger *zap.Logger,
) {
	userIDs, err := scheduleRepo.ListUserIDs(ctx)
	if err != nil {
		zapLogger.Error("Failed to list stored schedules for re-arm", zap.Error(err))
		return
	}

	rearmed := 0
	for _, userID := range userIDs {
		weekly, err := scheduleRepo.GetByUserID(ctx, userID)
		if err != nil {
			zapLogger.Warn("Failed to load stored schedule",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}

		settings, err := settingsRepo.GetByUserID(ctx, userID)
		if err != nil {
			zapLogger.Warn("Failed to load notification settings",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}

		if _, err := scheduler.Register(weekly, settings); err != nil {
			zapLogger.Warn("Failed to re-arm reminders",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		rearmed++
	}

	zapLogger.Info("Re-armed stored schedules",
		zap.Int("users", rearmed),
		zap.Int("total", len(userIDs)),
	)
}
