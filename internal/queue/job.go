package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderDispatch is a job for dispatching one fired reminder
	JobTypeReminderDispatch JobType = "reminder_dispatch"
	// JobTypeBroadcast is a job for sending a broadcast to all registered devices
	JobTypeBroadcast JobType = "broadcast"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID                 `json:"id"`
	Type       JobType                   `json:"type"`
	UserID     uuid.UUID                 `json:"user_id"`
	Reminder   *models.ScheduledReminder `json:"reminder,omitempty"`   // Set for reminder dispatch jobs
	Title      string                    `json:"title,omitempty"`      // Set for broadcast jobs
	Message    string                    `json:"message,omitempty"`    // Set for broadcast jobs
	NotBefore  *time.Time                `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time                `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time                 `json:"created_at"`
	RetryCount int                       `json:"retry_count"`
	MaxRetries int                       `json:"max_retries"`
}

// NewReminderDispatchJob creates a job carrying one fired reminder. The job
// expires after an hour; a reminder delivered later than that is noise.
func NewReminderDispatchJob(reminder *models.ScheduledReminder) *Job {
	notAfter := time.Now().Add(time.Hour)
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeReminderDispatch,
		UserID:     reminder.UserID,
		Reminder:   reminder,
		NotAfter:   &notAfter,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewBroadcastJob creates a job for a broadcast push to all registered devices.
func NewBroadcastJob(title, message string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeBroadcast,
		Title:      title,
		Message:    message,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
