package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users with stored schedules",
		Long:  "List every user that has a generated weekly schedule, with activity counts and notification settings",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			scheduleRepo := database.NewScheduleRepository(db)
			settingsRepo := database.NewSettingsRepository(db)
			ctx := context.Background()

			userIDs, err := scheduleRepo.ListUserIDs(ctx)
			if err != nil {
				return fmt.Errorf("failed to list schedules: %w", err)
			}

			if len(userIDs) == 0 {
				fmt.Println("No schedules stored")
				return nil
			}

			fmt.Println("Users with stored schedules:")
			for _, userID := range userIDs {
				fmt.Printf("  - User: %s\n", userID)

				weekly, err := scheduleRepo.GetByUserID(ctx, userID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "    Warning: failed to load schedule: %v\n", err)
					continue
				}
				fmt.Printf("    Activities: %d\n", weekly.TotalActivities())
				fmt.Printf("    Summary: %s\n", weekly.Summary)

				settings, err := settingsRepo.GetByUserID(ctx, userID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "    Warning: failed to load settings: %v\n", err)
					continue
				}
				fmt.Printf("    Push: %t  SMS: %t  Morning: %s  Evening: %s\n",
					settings.PushEnabled, settings.SMSEnabled,
					settings.MorningTime, settings.EveningTime,
				)
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
