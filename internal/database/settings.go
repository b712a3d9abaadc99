package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// SettingsRepository handles notification settings database operations
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Upsert stores a user's notification settings, replacing any existing row
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.NotificationSettings) error {
	query := `
		INSERT INTO notification_settings
			(user_id, push_enabled, sms_enabled, phone_number, activity_reminders,
			 daily_motivation, evening_reflection, morning_time, evening_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			push_enabled = EXCLUDED.push_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			phone_number = EXCLUDED.phone_number,
			activity_reminders = EXCLUDED.activity_reminders,
			daily_motivation = EXCLUDED.daily_motivation,
			evening_reflection = EXCLUDED.evening_reflection,
			morning_time = EXCLUDED.morning_time,
			evening_time = EXCLUDED.evening_time,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		settings.UserID,
		settings.PushEnabled,
		settings.SMSEnabled,
		settings.PhoneNumber,
		settings.ActivityReminders,
		settings.DailyMotivation,
		settings.EveningReflection,
		settings.MorningTime,
		settings.EveningTime,
		time.Now(),
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's notification settings. A user with no stored
// row gets the defaults (categories on, transports off).
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error) {
	settings := &models.NotificationSettings{}

	query := `
		SELECT user_id, push_enabled, sms_enabled, phone_number, activity_reminders,
		       daily_motivation, evening_reflection, morning_time, evening_time, updated_at
		FROM notification_settings
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.PushEnabled,
		&settings.SMSEnabled,
		&settings.PhoneNumber,
		&settings.ActivityReminders,
		&settings.DailyMotivation,
		&settings.EveningReflection,
		&settings.MorningTime,
		&settings.EveningTime,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.DefaultNotificationSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}
