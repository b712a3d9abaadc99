package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mytrainer/mytrainer-api/internal/config"
	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/schedule"
	"github.com/mytrainer/mytrainer-api/internal/validation"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		goalFlag        string
		daysFlag        string
		startFlag       string
		endFlag         string
		preferencesFlag string
		userFlag        string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a weekly schedule offline",
		Long:  "Run the deterministic schedule generator without an LLM call. Prints the schedule as JSON; with --user it is also stored for that user",
		RunE: func(cmd *cobra.Command, args []string) error {
			workDays := []string{}
			for _, day := range strings.Split(daysFlag, ",") {
				trimmed := strings.TrimSpace(day)
				if trimmed == "" {
					continue
				}
				if err := validation.ValidateWeekday(trimmed); err != nil {
					return err
				}
				workDays = append(workDays, trimmed)
			}
			if len(workDays) == 0 {
				return fmt.Errorf("at least one work day is required")
			}

			profile := &models.UserProfile{
				ID:          uuid.New(),
				Goal:        validation.SanitizeText(goalFlag),
				WorkDays:    workDays,
				StartTime:   startFlag,
				EndTime:     endFlag,
				Preferences: validation.SanitizeText(preferencesFlag),
			}

			weekly := schedule.NewFallbackGenerator().Generate(profile)

			if userFlag != "" {
				userID, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid user ID: %w", err)
				}
				profile.ID = userID

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

				ctx := context.Background()
				if err := database.NewProfileRepository(db).Upsert(ctx, profile); err != nil {
					return fmt.Errorf("failed to save profile: %w", err)
				}
				if err := database.NewScheduleRepository(db).Upsert(ctx, userID, weekly); err != nil {
					return fmt.Errorf("failed to save schedule: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Stored schedule for user %s\n", userID)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(weekly)
		},
	}

	cmd.Flags().StringVar(&goalFlag, "goal", "", "Primary goal (required)")
	cmd.Flags().StringVar(&daysFlag, "days", "Monday,Tuesday,Wednesday,Thursday,Friday", "Comma-separated work days")
	cmd.Flags().StringVar(&startFlag, "start", "09:00", "Day start time (HH:MM)")
	cmd.Flags().StringVar(&endFlag, "end", "17:00", "Day end time (HH:MM)")
	cmd.Flags().StringVar(&preferencesFlag, "preferences", "", "Free-form preferences")
	cmd.Flags().StringVar(&userFlag, "user", "", "Store the result for this user ID")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}
