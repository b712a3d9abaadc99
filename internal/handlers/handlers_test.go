package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/queue"
)

// In-memory fakes for the repository interfaces.

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*models.UserProfile
	upsertErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.UserProfile)}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, profile *models.UserProfile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile not found")
	}
	return p, nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*models.WeeklySchedule
	upsertErr error
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uuid.UUID]*models.WeeklySchedule)}
}

func (f *fakeScheduleRepo) Upsert(_ context.Context, userID uuid.UUID, weekly *models.WeeklySchedule) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules[userID] = weekly
	return nil
}

func (f *fakeScheduleRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.WeeklySchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[userID]
	if !ok {
		return nil, fmt.Errorf("schedule not found")
	}
	return s, nil
}

func (f *fakeScheduleRepo) ListUserIDs(_ context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(f.schedules))
	for id := range f.schedules {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeSettingsRepo struct {
	mu        sync.Mutex
	settings  map[uuid.UUID]*models.NotificationSettings
	upsertErr error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uuid.UUID]*models.NotificationSettings)}
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, settings *models.NotificationSettings) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[settings.UserID] = settings
	return nil
}

func (f *fakeSettingsRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.NotificationSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	// Absent rows resolve to defaults, mirroring the real repository
	return models.DefaultNotificationSettings(userID), nil
}

type fakeDeviceRepo struct {
	mu          sync.Mutex
	tokens      map[uuid.UUID]string
	registerErr error
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{tokens: make(map[uuid.UUID]string)}
}

func (f *fakeDeviceRepo) Register(_ context.Context, device *models.DeviceToken) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[device.UserID] = device.Token
	return nil
}

func (f *fakeDeviceRepo) GetByUserID(_ context.Context, userID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[userID], nil
}

func (f *fakeDeviceRepo) ListTokens(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tokens := make([]string, 0, len(f.tokens))
	for _, t := range f.tokens {
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func (f *fakeDeviceRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens), nil
}

type fakeJobQueue struct {
	mu         sync.Mutex
	enqueued   []*queue.Job
	enqueueErr error
}

func (f *fakeJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobQueue) Consume(_ context.Context, _ int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, fmt.Errorf("not implemented")
}

func (f *fakeJobQueue) Close() error { return nil }

func (f *fakeJobQueue) HealthCheck(_ context.Context) error { return nil }

func (f *fakeJobQueue) jobs() []*queue.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*queue.Job, len(f.enqueued))
	copy(out, f.enqueued)
	return out
}
