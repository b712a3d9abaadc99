package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/validation"
)

// NewSettingsCmd creates the settings command
func NewSettingsCmd() *cobra.Command {
	var (
		userFlag    string
		pushFlag    bool
		smsFlag     bool
		phoneFlag   string
		morningFlag string
		eveningFlag string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update notification settings",
		Long:  "Show a user's notification settings, or update them when flags are given",
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
			ctx := context.Background()

			settings, err := settingsRepo.GetByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			changed := false
			if cmd.Flags().Changed("push") {
				settings.PushEnabled = pushFlag
				changed = true
			}
			if cmd.Flags().Changed("sms") {
				settings.SMSEnabled = smsFlag
				changed = true
			}
			if cmd.Flags().Changed("phone") {
				if phoneFlag != "" {
					if err := validation.ValidatePhoneNumber(phoneFlag); err != nil {
						return err
					}
				}
				settings.PhoneNumber = phoneFlag
				changed = true
			}
			if cmd.Flags().Changed("morning-time") {
				if err := validation.ValidateTimeOfDay(morningFlag); err != nil {
					return err
				}
				settings.MorningTime = morningFlag
				changed = true
			}
			if cmd.Flags().Changed("evening-time") {
				if err := validation.ValidateTimeOfDay(eveningFlag); err != nil {
					return err
				}
				settings.EveningTime = eveningFlag
				changed = true
			}

			if changed {
				if err := settingsRepo.Upsert(ctx, settings); err != nil {
					return fmt.Errorf("failed to save settings: %w", err)
				}
				fmt.Println("✓ Settings updated")
				fmt.Println("Note: a running server re-arms reminders on the next settings update via the API")
			}

			fmt.Printf("Settings for user %s:\n", userID)
			fmt.Printf("  Push enabled:       %t\n", settings.PushEnabled)
			fmt.Printf("  SMS enabled:        %t\n", settings.SMSEnabled)
			fmt.Printf("  Phone number:       %s\n", settings.PhoneNumber)
			fmt.Printf("  Activity reminders: %t\n", settings.ActivityReminders)
			fmt.Printf("  Daily motivation:   %t\n", settings.DailyMotivation)
			fmt.Printf("  Evening reflection: %t\n", settings.EveningReflection)
			fmt.Printf("  Morning time:       %s\n", settings.MorningTime)
			fmt.Printf("  Evening time:       %s\n", settings.EveningTime)

			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "User ID (required)")
	cmd.Flags().BoolVar(&pushFlag, "push", false, "Enable or disable push notifications")
	cmd.Flags().BoolVar(&smsFlag, "sms", false, "Enable or disable SMS notifications")
	cmd.Flags().StringVar(&phoneFlag, "phone", "", "Phone number in E.164 format")
	cmd.Flags().StringVar(&morningFlag, "morning-time", "", "Morning motivation time (HH:MM)")
	cmd.Flags().StringVar(&eveningFlag, "evening-time", "", "Evening reflection time (HH:MM)")

	return cmd
}
