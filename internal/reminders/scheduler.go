package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// Enqueuer hands a fired reminder off for dispatch.
type Enqueuer interface {
	EnqueueReminder(ctx context.Context, reminder models.ScheduledReminder) error
}

// Scheduler arms weekly cron entries for each user's derived reminders. Entry
// IDs are tracked per user so re-registration is all-or-nothing: every entry
// for the user is removed before new ones are armed, which rules out duplicate
// firings from stale entries.
type Scheduler struct {
	cron     *cron.Cron
	jobs     map[uuid.UUID][]cron.EntryID
	armed    map[uuid.UUID][]models.ScheduledReminder
	deriver  *Deriver
	enqueuer Enqueuer
	logger   *zap.Logger
	location *time.Location

	mu      sync.RWMutex
	running bool
}

// NewScheduler creates a reminder scheduler in the given IANA timezone. An
// unknown timezone falls back to UTC.
func NewScheduler(enqueuer Enqueuer, logger *zap.Logger, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		if logger != nil {
			logger.Warn("scheduler_timezone_invalid",
				zap.String("timezone", timezone),
				zap.Error(err),
			)
		}
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     make(map[uuid.UUID][]cron.EntryID),
		armed:    make(map[uuid.UUID][]models.ScheduledReminder),
		deriver:  NewDeriver(),
		enqueuer: enqueuer,
		logger:   logger,
		location: loc,
	}
}

// Location returns the timezone reminder entries fire in.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Start begins firing armed entries.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("reminder scheduler already running")
	}
	s.running = true
	s.cron.Start()

	if s.logger != nil {
		s.logger.Info("reminder_scheduler_started", zap.String("timezone", s.location.String()))
	}
	return nil
}

// Stop stops the scheduler and waits for in-flight jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	if s.logger != nil {
		s.logger.Info("reminder_scheduler_stopped")
	}
}

// Register derives the user's reminders and arms a weekly cron entry for each.
// Any previously armed entries for the user are cleared first. Returns the
// number of reminders armed.
func (s *Scheduler) Register(weekly *models.WeeklySchedule, settings *models.NotificationSettings) (int, error) {
	derived := s.deriver.Derive(time.Now().In(s.location), weekly, settings)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked(settings.UserID)

	entries := make([]cron.EntryID, 0, len(derived))
	for i := range derived {
		reminder := derived[i]
		expr, err := weeklyCronExpr(reminder.Day, reminder.TimeOfDay)
		if err != nil {
			s.removeEntriesLocked(settings.UserID, entries)
			return 0, err
		}
		entryID, err := s.cron.AddFunc(expr, func() {
			s.fire(reminder)
		})
		if err != nil {
			s.removeEntriesLocked(settings.UserID, entries)
			return 0, fmt.Errorf("failed to arm reminder: %w", err)
		}
		entries = append(entries, entryID)
	}

	s.jobs[settings.UserID] = entries
	s.armed[settings.UserID] = derived

	if s.logger != nil {
		s.logger.Info("reminders_registered",
			zap.String("user_id", settings.UserID.String()),
			zap.Int("reminder_count", len(derived)),
		)
	}
	return len(derived), nil
}

// Clear removes every armed entry for the user.
func (s *Scheduler) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(userID)
}

func (s *Scheduler) clearLocked(userID uuid.UUID) {
	entries, ok := s.jobs[userID]
	if !ok {
		return
	}
	for _, id := range entries {
		s.cron.Remove(id)
	}
	delete(s.jobs, userID)
	delete(s.armed, userID)

	if s.logger != nil {
		s.logger.Info("reminders_cleared", zap.String("user_id", userID.String()))
	}
}

func (s *Scheduler) removeEntriesLocked(userID uuid.UUID, entries []cron.EntryID) {
	for _, id := range entries {
		s.cron.Remove(id)
	}
	delete(s.jobs, userID)
	delete(s.armed, userID)
}

// Snapshot returns the user's armed reminders with next-run times refreshed
// from the cron entries.
func (s *Scheduler) Snapshot(userID uuid.UUID) []models.ScheduledReminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	armed, ok := s.armed[userID]
	if !ok {
		return nil
	}
	entries := s.jobs[userID]

	out := make([]models.ScheduledReminder, len(armed))
	copy(out, armed)
	for i := range out {
		if i < len(entries) {
			if next := s.cron.Entry(entries[i]).Next; !next.IsZero() {
				out[i].NextFireAt = next
			}
		}
	}
	return out
}

// ActiveUsers returns the number of users with armed reminders.
func (s *Scheduler) ActiveUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// ActiveReminders returns the total number of armed entries.
func (s *Scheduler) ActiveReminders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entries := range s.jobs {
		total += len(entries)
	}
	return total
}

// fire hands a fired reminder to the enqueuer. Enqueue failures are logged;
// the entry stays armed for next week either way.
func (s *Scheduler) fire(reminder models.ScheduledReminder) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.enqueuer.EnqueueReminder(ctx, reminder); err != nil {
		if s.logger != nil {
			s.logger.Error("reminder_enqueue_failed",
				zap.String("user_id", reminder.UserID.String()),
				zap.String("category", string(reminder.Category)),
				zap.Error(err),
			)
		}
		return
	}

	if s.logger != nil {
		s.logger.Debug("reminder_fired",
			zap.String("user_id", reminder.UserID.String()),
			zap.String("category", string(reminder.Category)),
			zap.String("day", string(reminder.Day)),
			zap.String("time_of_day", reminder.TimeOfDay),
		)
	}
}

// weeklyCronExpr builds a standard five-field cron expression firing weekly on
// the given day at HH:MM.
func weeklyCronExpr(day models.Weekday, timeOfDay string) (string, error) {
	hour, minute, ok := splitHHMM(timeOfDay)
	if !ok {
		return "", fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	idx := day.Index()
	if idx < 0 {
		return "", fmt.Errorf("invalid weekday %q", day)
	}
	return fmt.Sprintf("%d %d * * %d", minute, hour, idx), nil
}
