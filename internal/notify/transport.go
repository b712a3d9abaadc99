package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// Notification is one message bound for a user across whatever transports are
// enabled and available for them.
type Notification struct {
	UserID      uuid.UUID
	Category    models.ReminderCategory
	Title       string
	Message     string
	Activity    *models.Activity
	DeviceToken string
	PhoneNumber string
	PushEnabled bool
	SMSEnabled  bool
}

// Transport is a single delivery channel.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string
	// Available reports whether this notification carries everything the
	// transport needs (enabled flag, destination address).
	Available(n Notification) bool
	// Send delivers the notification. Errors are isolated per transport.
	Send(ctx context.Context, n Notification) error
}

// TitleFor returns the push title used for a reminder category.
func TitleFor(category models.ReminderCategory) string {
	switch category {
	case models.CategoryActivityReminder:
		return "MyTrainer - Activity Reminder"
	case models.CategoryMorningMotivation:
		return "MyTrainer - Good Morning!"
	case models.CategoryEveningReflection:
		return "MyTrainer - Evening Reflection"
	case models.CategoryBroadcast:
		return "MyTrainer Update"
	default:
		return "MyTrainer Reminder"
	}
}
