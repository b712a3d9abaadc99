package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/notify"
	"github.com/mytrainer/mytrainer-api/internal/queue"
)

// retryBaseDelay is the redelivery delay for a job's first retry; it doubles
// on each subsequent attempt.
const retryBaseDelay = 30 * time.Second

// ReminderWorker processes reminder dispatch and broadcast jobs
type ReminderWorker struct {
	settingsRepo database.SettingsRepositoryInterface
	deviceRepo   database.DeviceRepositoryInterface
	dispatcher   *notify.Dispatcher
	pushT        *notify.PushTransport
	jobQueue     queue.JobQueue
	logger       *zap.Logger
}

// NewReminderWorker creates a new reminder worker. pushT may be nil when push
// credentials are not configured; broadcasts then fail to the DLQ. jobQueue is
// used for delayed retry redelivery and may be nil, in which case retries
// requeue in place.
func NewReminderWorker(
	settingsRepo database.SettingsRepositoryInterface,
	deviceRepo database.DeviceRepositoryInterface,
	dispatcher *notify.Dispatcher,
	pushT *notify.PushTransport,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		settingsRepo: settingsRepo,
		deviceRepo:   deviceRepo,
		dispatcher:   dispatcher,
		pushT:        pushT,
		jobQueue:     jobQueue,
		logger:       logger,
	}
}

// ProcessReminderDispatchJob dispatches one fired reminder through the user's
// enabled transports.
func (w *ReminderWorker) ProcessReminderDispatchJob(ctx context.Context, job *queue.Job) error {
	if job.Reminder == nil {
		return fmt.Errorf("reminder payload is required for dispatch job")
	}
	reminder := job.Reminder

	settings, err := w.settingsRepo.GetByUserID(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	token, err := w.deviceRepo.GetByUserID(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to load device token: %w", err)
	}

	attempted := w.dispatcher.Dispatch(ctx, notify.Notification{
		UserID:      reminder.UserID,
		Category:    reminder.Category,
		Title:       notify.TitleFor(reminder.Category),
		Message:     reminder.Message,
		Activity:    reminder.Activity,
		DeviceToken: token,
		PhoneNumber: settings.PhoneNumber,
		PushEnabled: settings.PushEnabled,
		SMSEnabled:  settings.SMSEnabled,
	})

	w.logger.Info("reminder_dispatched",
		zap.String("user_id", reminder.UserID.String()),
		zap.String("category", string(reminder.Category)),
		zap.String("day", string(reminder.Day)),
		zap.Int("transports_attempted", attempted),
	)
	return nil
}

// ProcessBroadcastJob fans a broadcast out to every registered device
func (w *ReminderWorker) ProcessBroadcastJob(ctx context.Context, job *queue.Job) error {
	if w.pushT == nil {
		return fmt.Errorf("push transport is not configured")
	}

	tokens, err := w.deviceRepo.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		w.logger.Info("broadcast_skipped_no_devices", zap.String("job_id", job.ID.String()))
		return nil
	}

	result, err := w.pushT.Broadcast(ctx, tokens, job.Title, job.Message)
	if err != nil {
		return fmt.Errorf("failed to send broadcast: %w", err)
	}

	w.logger.Info("broadcast_completed",
		zap.String("job_id", job.ID.String()),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("failure_count", result.FailureCount),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (w *ReminderWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Respect NotBefore; a delayed retry delivered early waits in the queue
	if !job.ShouldProcess() {
		w.logger.Debug("job_not_ready",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Error("job_nack_failed", zap.Error(nackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeReminderDispatch:
		if err := w.ProcessReminderDispatchJob(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err, "reminder dispatch")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeBroadcast:
		if err := w.ProcessBroadcastJob(ctx, job); err != nil {
			return w.handleJobError(ctx, msg, job, err, "broadcast")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack broadcast job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			w.logger.Error("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries failed jobs until MaxRetries, then sends them to the
// DLQ. Retries are republished with NotBefore pushed out by a doubling delay,
// which routes them through the delayed exchange instead of spinning on an
// immediate requeue.
func (w *ReminderWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error, jobType string) error {
	if job.CanRetry() {
		job.IncrementRetry()
		delay := retryDelay(job.RetryCount)
		notBefore := time.Now().Add(delay)
		job.NotBefore = &notBefore

		w.logger.Warn("job_retry",
			zap.String("job_type", jobType),
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)

		if w.jobQueue != nil {
			if enqErr := w.jobQueue.Enqueue(ctx, job); enqErr != nil {
				w.logger.Error("job_retry_enqueue_failed",
					zap.String("job_id", job.ID.String()),
					zap.Error(enqErr),
				)
			} else {
				if ackErr := msg.Ack(); ackErr != nil {
					w.logger.Error("job_ack_failed", zap.Error(ackErr))
				}
				return fmt.Errorf("job failed (retry in %s): %w", delay, err)
			}
		}

		// No queue to delay through; requeue in place and let NotBefore gate it
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Error("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	w.logger.Error("job_dead_lettered",
		zap.String("job_type", jobType),
		zap.String("job_id", job.ID.String()),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		w.logger.Error("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// retryDelay doubles per attempt: 30s, 1m, 2m for the default three retries.
func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
