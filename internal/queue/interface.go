package queue

import (
	"context"
	"time"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// MessageInterface defines the interface for queue messages
// This enables better testability by allowing mock implementations
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface for job queues
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, job *Job) error

	// Consume returns a channel of messages from the queue
	// Messages are delivered asynchronously as they arrive
	// The caller is responsible for acknowledging each message
	// Prefetch controls how many unacknowledged messages each consumer can hold
	// Returns a channel that will be closed when the context is cancelled or an error occurs
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}

// DLQPurger purges dead letter queue messages older than a retention window.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}

// ReminderEnqueuer adapts a JobQueue to the reminder scheduler, wrapping each
// fired reminder in a dispatch job.
type ReminderEnqueuer struct {
	Queue JobQueue
}

// EnqueueReminder publishes a dispatch job for a fired reminder.
func (e *ReminderEnqueuer) EnqueueReminder(ctx context.Context, reminder models.ScheduledReminder) error {
	return e.Queue.Enqueue(ctx, NewReminderDispatchJob(&reminder))
}
