package reminders

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

type fakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []models.ScheduledReminder
}

func (f *fakeEnqueuer) EnqueueReminder(_ context.Context, r models.ScheduledReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, r)
	return nil
}

func TestScheduler_RegisterAndClear(t *testing.T) {
	t.Parallel()
	s := NewScheduler(&fakeEnqueuer{}, zap.NewNop(), "UTC")
	userID := uuid.New()
	settings := testSettings(userID)

	weekly := weeklyWith(models.Monday, models.Activity{Time: "10:00", Activity: "Run"})

	count, err := s.Register(weekly, settings)
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Register() = %d reminders, want 3", count)
	}
	if s.ActiveUsers() != 1 {
		t.Errorf("ActiveUsers() = %d, want 1", s.ActiveUsers())
	}
	if s.ActiveReminders() != 3 {
		t.Errorf("ActiveReminders() = %d, want 3", s.ActiveReminders())
	}

	s.Clear(userID)
	if s.ActiveUsers() != 0 {
		t.Errorf("ActiveUsers() after Clear = %d, want 0", s.ActiveUsers())
	}
	if got := s.Snapshot(userID); got != nil {
		t.Errorf("Snapshot() after Clear = %v, want nil", got)
	}
}

func TestScheduler_ReRegisterReplacesEntries(t *testing.T) {
	t.Parallel()
	s := NewScheduler(&fakeEnqueuer{}, zap.NewNop(), "UTC")
	settings := testSettings(uuid.New())

	first := weeklyWith(models.Monday,
		models.Activity{Time: "10:00", Activity: "Run"},
		models.Activity{Time: "11:00", Activity: "Read"},
	)
	if _, err := s.Register(first, settings); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if s.ActiveReminders() != 4 {
		t.Fatalf("ActiveReminders() = %d, want 4", s.ActiveReminders())
	}

	second := weeklyWith(models.Tuesday, models.Activity{Time: "10:00", Activity: "Swim"})
	if _, err := s.Register(second, settings); err != nil {
		t.Fatalf("second Register() error: %v", err)
	}

	// Old entries must be gone, not accumulated
	if s.ActiveReminders() != 3 {
		t.Errorf("ActiveReminders() after re-register = %d, want 3", s.ActiveReminders())
	}
	if s.ActiveUsers() != 1 {
		t.Errorf("ActiveUsers() = %d, want 1", s.ActiveUsers())
	}
}

func TestScheduler_SnapshotCarriesNextRun(t *testing.T) {
	t.Parallel()
	s := NewScheduler(&fakeEnqueuer{}, zap.NewNop(), "UTC")
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	settings := testSettings(uuid.New())
	weekly := weeklyWith(models.Monday, models.Activity{Time: "10:00", Activity: "Run"})
	if _, err := s.Register(weekly, settings); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	snapshot := s.Snapshot(settings.UserID)
	if len(snapshot) != 3 {
		t.Fatalf("Snapshot() = %d reminders, want 3", len(snapshot))
	}
	for _, r := range snapshot {
		if r.NextFireAt.IsZero() {
			t.Errorf("reminder %s has zero NextFireAt", r.Category)
		}
	}
}

func TestScheduler_StartTwiceFails(t *testing.T) {
	t.Parallel()
	s := NewScheduler(&fakeEnqueuer{}, zap.NewNop(), "UTC")
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestScheduler_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	t.Parallel()
	s := NewScheduler(&fakeEnqueuer{}, zap.NewNop(), "Not/AZone")
	if s.Location().String() != "UTC" {
		t.Errorf("Location() = %s, want UTC", s.Location())
	}
}

func TestWeeklyCronExpr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		day       models.Weekday
		timeOfDay string
		want      string
		wantErr   bool
	}{
		{"monday morning", models.Monday, "07:30", "30 7 * * 1", false},
		{"sunday midnight", models.Sunday, "00:00", "0 0 * * 0", false},
		{"saturday evening", models.Saturday, "21:00", "0 21 * * 6", false},
		{"bad time", models.Monday, "25:00", "", true},
		{"bad day", models.Weekday("someday"), "07:30", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := weeklyCronExpr(tt.day, tt.timeOfDay)
			if (err != nil) != tt.wantErr {
				t.Fatalf("weeklyCronExpr() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("weeklyCronExpr() = %q, want %q", got, tt.want)
			}
		})
	}
}
