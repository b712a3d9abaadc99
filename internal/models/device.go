package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken associates a push messaging token with a user.
type DeviceToken struct {
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Token        string    `json:"token" db:"token" validate:"required,min=10"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}
