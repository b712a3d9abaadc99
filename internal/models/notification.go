package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderCategory identifies the kind of reminder being dispatched.
type ReminderCategory string

const (
	CategoryActivityReminder  ReminderCategory = "activity_reminder"
	CategoryMorningMotivation ReminderCategory = "morning_motivation"
	CategoryEveningReflection ReminderCategory = "evening_reflection"
	CategoryBroadcast         ReminderCategory = "broadcast"
	CategoryTest              ReminderCategory = "test"
)

const (
	// DefaultMorningTime is when morning motivation fires unless overridden.
	DefaultMorningTime = "07:30"
	// DefaultEveningTime is when evening reflection fires unless overridden.
	DefaultEveningTime = "21:00"
)

// NotificationSettings holds a user's per-transport and per-category
// notification preferences.
type NotificationSettings struct {
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	PushEnabled       bool      `json:"pushEnabled" db:"push_enabled"`
	SMSEnabled        bool      `json:"smsEnabled" db:"sms_enabled"`
	PhoneNumber       string    `json:"phoneNumber,omitempty" db:"phone_number" validate:"omitempty,phone"`
	ActivityReminders bool      `json:"activityReminders" db:"activity_reminders"`
	DailyMotivation   bool      `json:"dailyMotivation" db:"daily_motivation"`
	EveningReflection bool      `json:"eveningReflection" db:"evening_reflection"`
	MorningTime       string    `json:"morningTime" db:"morning_time" validate:"omitempty,time_of_day"`
	EveningTime       string    `json:"eveningTime" db:"evening_time" validate:"omitempty,time_of_day"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultNotificationSettings returns settings with all reminder categories
// enabled but both transports off until the user opts in.
func DefaultNotificationSettings(userID uuid.UUID) *NotificationSettings {
	return &NotificationSettings{
		UserID:            userID,
		PushEnabled:       false,
		SMSEnabled:        false,
		ActivityReminders: true,
		DailyMotivation:   true,
		EveningReflection: true,
		MorningTime:       DefaultMorningTime,
		EveningTime:       DefaultEveningTime,
	}
}

// ScheduledReminder is a single armed reminder derived from a user's schedule
// and settings.
type ScheduledReminder struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"userId"`
	Category   ReminderCategory `json:"category"`
	Day        Weekday          `json:"day"`
	TimeOfDay  string           `json:"timeOfDay"`
	Message    string           `json:"message"`
	Activity   *Activity        `json:"activity,omitempty"`
	NextFireAt time.Time        `json:"nextFireAt"`
}
