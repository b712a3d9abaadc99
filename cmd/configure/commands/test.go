package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/logger"
	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/notify"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test notification",
		Long:  "Send a test notification to a user through every configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userFlag == "" {
				return fmt.Errorf("--user is required")
			}
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid user ID: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			zapLogger, err := logger.NewProductionLogger(false)
			if err != nil {
				log.Fatalf("Failed to initialize logger: %v", err)
			}
			defer func() {
				_ = logger.Sync(zapLogger)
			}()

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			settingsRepo := database.NewSettingsRepository(db)
			deviceRepo := database.NewDeviceRepository(db)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			settings, err := settingsRepo.GetByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			token, err := deviceRepo.GetByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load device token: %w", err)
			}

			var transports []notify.Transport
			if cfg.FirebaseConfigured() {
				pushT, err := notify.NewPushTransport(ctx, cfg.FirebaseCredsFile, zapLogger)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: push transport unavailable: %v\n", err)
				} else {
					transports = append(transports, pushT)
				}
			}
			if cfg.TwilioConfigured() {
				transports = append(transports,
					notify.NewSMSTransport(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, zapLogger))
			}
			if len(transports) == 0 {
				return fmt.Errorf("no notification transports configured")
			}

			dispatcher := notify.NewDispatcher(zapLogger, transports...)
			attempted := dispatcher.Dispatch(ctx, notify.Notification{
				UserID:      userID,
				Category:    models.CategoryTest,
				Message:     "🧪 Test notification from MyTrainer!\n\nThis is a test to ensure your notifications are working properly. If you received this, your notification system is set up correctly!",
				DeviceToken: token,
				PhoneNumber: settings.PhoneNumber,
				PushEnabled: settings.PushEnabled,
				SMSEnabled:  settings.SMSEnabled,
			})

			if attempted == 0 {
				fmt.Println("No transport accepted the notification; check the user's settings and device registration")
				return nil
			}

			fmt.Printf("✓ Test notification dispatched via %d transport(s)\n", attempted)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (required)")

	return cmd
}
