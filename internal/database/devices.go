package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// DeviceRepository handles device token database operations
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Register stores a user's push token, replacing any previous one
func (r *DeviceRepository) Register(ctx context.Context, device *models.DeviceToken) error {
	query := `
		INSERT INTO device_tokens (user_id, token, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			token = EXCLUDED.token,
			registered_at = EXCLUDED.registered_at
		RETURNING registered_at
	`

	err := r.db.QueryRowContext(ctx, query,
		device.UserID,
		device.Token,
		time.Now(),
	).Scan(&device.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

// GetByUserID retrieves a user's push token. Returns "" with no error when
// the user has no registered device.
func (r *DeviceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (string, error) {
	var token string

	err := r.db.QueryRowContext(ctx,
		`SELECT token FROM device_tokens WHERE user_id = $1`, userID,
	).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get device token: %w", err)
	}
	return token, nil
}

// ListTokens returns every registered push token, for broadcasts.
func (r *DeviceRepository) ListTokens(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM device_tokens`)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device tokens: %w", err)
	}
	return tokens, nil
}

// Count returns the number of registered devices, reported by health checks.
func (r *DeviceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_tokens`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count device tokens: %w", err)
	}
	return count, nil
}
