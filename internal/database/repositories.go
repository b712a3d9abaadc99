package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// ProfileRepositoryInterface defines the interface for profile repository operations
// This interface enables better testability by allowing mock implementations
type ProfileRepositoryInterface interface {
	Upsert(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
}

// ScheduleRepositoryInterface defines the interface for schedule repository operations
type ScheduleRepositoryInterface interface {
	Upsert(ctx context.Context, userID uuid.UUID, weekly *models.WeeklySchedule) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WeeklySchedule, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SettingsRepositoryInterface defines the interface for settings repository operations
type SettingsRepositoryInterface interface {
	Upsert(ctx context.Context, settings *models.NotificationSettings) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error)
}

// DeviceRepositoryInterface defines the interface for device token repository operations
type DeviceRepositoryInterface interface {
	Register(ctx context.Context, device *models.DeviceToken) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (string, error)
	ListTokens(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ProfileRepositoryInterface  = (*ProfileRepository)(nil)
	_ ScheduleRepositoryInterface = (*ScheduleRepository)(nil)
	_ SettingsRepositoryInterface = (*SettingsRepository)(nil)
	_ DeviceRepositoryInterface   = (*DeviceRepository)(nil)
)
