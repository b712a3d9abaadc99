package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// ProfileRepository handles user profile database operations
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates or replaces a user's profile
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	workDaysJSON, err := json.Marshal(profile.WorkDays)
	if err != nil {
		return fmt.Errorf("failed to marshal work days: %w", err)
	}

	query := `
		INSERT INTO user_profiles (id, goal, work_days, start_time, end_time, preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			goal = EXCLUDED.goal,
			work_days = EXCLUDED.work_days,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			preferences = EXCLUDED.preferences
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.Goal,
		workDaysJSON,
		profile.StartTime,
		profile.EndTime,
		profile.Preferences,
		time.Now(),
	).Scan(&profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by user ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	var workDaysJSON []byte

	query := `
		SELECT id, goal, work_days, start_time, end_time, preferences, created_at
		FROM user_profiles
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Goal,
		&workDaysJSON,
		&profile.StartTime,
		&profile.EndTime,
		&profile.Preferences,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := json.Unmarshal(workDaysJSON, &profile.WorkDays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work days: %w", err)
	}

	return profile, nil
}
