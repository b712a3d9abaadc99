package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/logger"
	"github.com/mytrainer/mytrainer-api/internal/notify"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("Starting reminder worker",
		zap.Bool("debug_mode", debugMode),
		zap.Bool("push_configured", cfg.FirebaseConfigured()),
		zap.Bool("sms_configured", cfg.TwilioConfigured()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to database")

	settingsRepo := database.NewSettingsRepository(db)
	deviceRepo := database.NewDeviceRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

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

	var transports []notify.Transport
	if pushT != nil {
		transports = append(transports, pushT)
	}
	if smsT != nil {
		transports = append(transports, smsT)
	}
	dispatcher := notify.NewDispatcher(zapLogger, transports...)

	if dispatcher.Transports() == 0 {
		zapLogger.Warn("No notification transports configured, reminders will be dropped after retries")
	}

	worker := workers.NewReminderWorker(settingsRepo, deviceRepo, dispatcher, pushT, jobQueue, zapLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				if err := worker.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.Job.ID.String()),
						zap.String("job_type", string(msg.Job.Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	cancel()

	zapLogger.Info("Worker stopped")
}
