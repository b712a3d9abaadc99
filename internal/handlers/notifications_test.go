package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/notify"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
)

type notificationFixture struct {
	handler      *NotificationHandler
	deviceRepo   *fakeDeviceRepo
	settingsRepo *fakeSettingsRepo
	scheduleRepo *fakeScheduleRepo
	jobQueue     *fakeJobQueue
	scheduler    *reminders.Scheduler
	router       *mux.Router
}

func newNotificationFixture() *notificationFixture {
	deviceRepo := newFakeDeviceRepo()
	settingsRepo := newFakeSettingsRepo()
	scheduleRepo := newFakeScheduleRepo()
	jobQueue := &fakeJobQueue{}

	scheduler := reminders.NewScheduler(&queue.ReminderEnqueuer{Queue: jobQueue}, zap.NewNop(), "UTC")
	dispatcher := notify.NewDispatcher(zap.NewNop())

	h := NewNotificationHandler(deviceRepo, settingsRepo, scheduleRepo, dispatcher, nil, nil, jobQueue, scheduler, zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/notifications").Subrouter())

	return &notificationFixture{
		handler:      h,
		deviceRepo:   deviceRepo,
		settingsRepo: settingsRepo,
		scheduleRepo: scheduleRepo,
		jobQueue:     jobQueue,
		scheduler:    scheduler,
		router:       r,
	}
}

func TestRegisterToken(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	rec := postJSON(t, f.router, "/notifications/register", map[string]any{
		"userId": userID.String(),
		"token":  "device-token-1234567890",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	token, _ := f.deviceRepo.GetByUserID(t.Context(), userID)
	if token != "device-token-1234567890" {
		t.Errorf("stored token = %q", token)
	}
}

func TestRegisterToken_Validation(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing token", map[string]any{"userId": uuid.NewString()}},
		{"short token", map[string]any{"userId": uuid.NewString(), "token": "short"}},
		{"missing user", map[string]any{"token": "device-token-1234567890"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := postJSON(t, f.router, "/notifications/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetSettings_DefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/notifications/settings/"+userID.String(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data models.NotificationSettings `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if !envelope.Data.ActivityReminders || !envelope.Data.DailyMotivation {
		t.Error("unset settings should come back as defaults with categories on")
	}
	if envelope.Data.PushEnabled || envelope.Data.SMSEnabled {
		t.Error("unset settings should have transports off")
	}
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	rec := postPutJSON(t, f.router, "/notifications/settings/"+userID.String(), map[string]any{
		"pushEnabled":       true,
		"smsEnabled":        true,
		"phoneNumber":       "+14155550123",
		"activityReminders": true,
		"dailyMotivation":   false,
		"eveningReflection": true,
		"morningTime":       "08:00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := f.settingsRepo.GetByUserID(t.Context(), userID)
	if !stored.PushEnabled || !stored.SMSEnabled {
		t.Error("transports should be enabled")
	}
	if stored.MorningTime != "08:00" {
		t.Errorf("MorningTime = %q, want 08:00", stored.MorningTime)
	}
	// Empty evening time falls back to the default
	if stored.EveningTime != models.DefaultEveningTime {
		t.Errorf("EveningTime = %q, want default %s", stored.EveningTime, models.DefaultEveningTime)
	}
}

func TestUpdateSettings_RearmsReminders(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	weekly := models.NewWeeklySchedule()
	weekly.Days[models.Monday] = models.DaySchedule{Activities: []models.Activity{{Time: "10:00", Activity: "Run"}}}
	if err := f.scheduleRepo.Upsert(t.Context(), userID, weekly); err != nil {
		t.Fatal(err)
	}

	rec := postPutJSON(t, f.router, "/notifications/settings/"+userID.String(), map[string]any{
		"pushEnabled":       true,
		"activityReminders": true,
		"dailyMotivation":   true,
		"eveningReflection": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if f.scheduler.ActiveUsers() != 1 {
		t.Errorf("ActiveUsers = %d, want 1 after settings update", f.scheduler.ActiveUsers())
	}
	if f.scheduler.ActiveReminders() != 3 {
		t.Errorf("ActiveReminders = %d, want 3", f.scheduler.ActiveReminders())
	}

	// Disabling every category clears the armed reminders
	rec = postPutJSON(t, f.router, "/notifications/settings/"+userID.String(), map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if f.scheduler.ActiveReminders() != 0 {
		t.Errorf("ActiveReminders = %d, want 0 with all categories off", f.scheduler.ActiveReminders())
	}
}

func TestUpdateSettings_InvalidPhone(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postPutJSON(t, f.router, "/notifications/settings/"+uuid.NewString(), map[string]any{
		"phoneNumber": "not-a-number",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSendSMS_UnconfiguredTransport(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postJSON(t, f.router, "/notifications/sms", map[string]any{
		"to":      "+14155550123",
		"message": "hi",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without SMS transport", rec.Code)
	}
}

func TestSendPush_UnconfiguredTransport(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postJSON(t, f.router, "/notifications/push", map[string]any{
		"token":   "device-token-1234567890",
		"message": "hi",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without push transport", rec.Code)
	}
}

func TestBroadcast_EnqueuesJob(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postJSON(t, f.router, "/notifications/broadcast", map[string]any{
		"title":   "Maintenance",
		"message": "Back soon",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	jobs := f.jobQueue.jobs()
	if len(jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(jobs))
	}
	if jobs[0].Type != queue.JobTypeBroadcast {
		t.Errorf("job type = %s, want broadcast", jobs[0].Type)
	}
	if jobs[0].Title != "Maintenance" || jobs[0].Message != "Back soon" {
		t.Errorf("job payload = %q/%q", jobs[0].Title, jobs[0].Message)
	}
}

func TestBroadcast_RequiresMessage(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postJSON(t, f.router, "/notifications/broadcast", map[string]any{"title": "no body"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestScheduleReminders(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	weekly := models.NewWeeklySchedule()
	weekly.Days[models.Friday] = models.DaySchedule{Activities: []models.Activity{{Time: "09:00", Activity: "Gym"}}}
	if err := f.scheduleRepo.Upsert(t.Context(), userID, weekly); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, f.router, "/notifications/schedule", map[string]any{"userId": userID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if count, ok := data["reminderCount"].(float64); !ok || count != 3 {
		t.Errorf("reminderCount = %v, want 3", data["reminderCount"])
	}
}

func TestScheduleReminders_NoSchedule(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()

	rec := postJSON(t, f.router, "/notifications/schedule", map[string]any{"userId": uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTestNotification_NoTransports(t *testing.T) {
	t.Parallel()
	f := newNotificationFixture()
	userID := uuid.New()

	rec := postJSON(t, f.router, "/notifications/test", map[string]any{"userId": userID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if attempted, ok := data["transportsAttempted"].(float64); !ok || attempted != 0 {
		t.Errorf("transportsAttempted = %v, want 0", data["transportsAttempted"])
	}
}

func postPutJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("PUT", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
