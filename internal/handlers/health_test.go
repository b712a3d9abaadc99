package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
)

func TestHealthCheck_Basic(t *testing.T) {
	t.Parallel()
	h := NewHealthChecker(nil, nil, nil, nil, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Checks != nil {
		t.Error("basic mode should not include checks")
	}
}

func TestHealthCheck_Extended(t *testing.T) {
	t.Parallel()
	deviceRepo := newFakeDeviceRepo()
	if err := deviceRepo.Register(t.Context(), &models.DeviceToken{UserID: uuid.New(), Token: "device-token-1234567890"}); err != nil {
		t.Fatal(err)
	}

	jobQueue := &fakeJobQueue{}
	scheduler := reminders.NewScheduler(&queue.ReminderEnqueuer{Queue: jobQueue}, zap.NewNop(), "UTC")

	h := NewHealthChecker(nil, nil, jobQueue, deviceRepo, scheduler)

	req := httptest.NewRequest("GET", "/healthz?mode=extended", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Checks["queue"] != "healthy" {
		t.Errorf("queue check = %q, want healthy", resp.Checks["queue"])
	}
	if resp.ActiveDevices == nil || *resp.ActiveDevices != 1 {
		t.Errorf("ActiveDevices = %v, want 1", resp.ActiveDevices)
	}
	if resp.ActiveUsers == nil || *resp.ActiveUsers != 0 {
		t.Errorf("ActiveUsers = %v, want 0", resp.ActiveUsers)
	}
}
