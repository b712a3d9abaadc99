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

// ScheduleRepository handles weekly schedule database operations
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Upsert stores a user's weekly schedule, replacing any existing one
func (r *ScheduleRepository) Upsert(ctx context.Context, userID uuid.UUID, weekly *models.WeeklySchedule) error {
	scheduleJSON, err := json.Marshal(weekly)
	if err != nil {
		return fmt.Errorf("failed to marshal schedule: %w", err)
	}

	query := `
		INSERT INTO weekly_schedules (user_id, schedule, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			schedule = EXCLUDED.schedule,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, scheduleJSON, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's weekly schedule
func (r *ScheduleRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WeeklySchedule, error) {
	var scheduleJSON []byte

	query := `SELECT schedule FROM weekly_schedules WHERE user_id = $1`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&scheduleJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	weekly := &models.WeeklySchedule{}
	if err := json.Unmarshal(scheduleJSON, weekly); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	return weekly, nil
}

// ListUserIDs returns every user with a stored schedule, used to re-arm
// reminders on startup.
func (r *ScheduleRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM weekly_schedules`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule users: %w", err)
	}
	return ids, nil
}
