package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/schedule"
)

type scheduleFixture struct {
	handler      *ScheduleHandler
	profileRepo  *fakeProfileRepo
	scheduleRepo *fakeScheduleRepo
	settingsRepo *fakeSettingsRepo
	router       *mux.Router
}

func newScheduleFixture() *scheduleFixture {
	profileRepo := newFakeProfileRepo()
	scheduleRepo := newFakeScheduleRepo()
	settingsRepo := newFakeSettingsRepo()

	// No API key puts the generator in deterministic fallback mode, so the
	// full generate path runs without any network
	generator := schedule.NewGenerator("", "", "", zap.NewNop(), false)

	h := NewScheduleHandler(profileRepo, scheduleRepo, settingsRepo, generator, nil, zap.NewNop())
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/schedule").Subrouter())

	return &scheduleFixture{
		handler:      h,
		profileRepo:  profileRepo,
		scheduleRepo: scheduleRepo,
		settingsRepo: settingsRepo,
		router:       r,
	}
}

func validGenerateBody() map[string]any {
	return map[string]any{
		"goal":      "Learn Go",
		"workDays":  []string{"monday", "tuesday", "wednesday"},
		"startTime": "09:00",
		"endTime":   "17:00",
	}
}

func postJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("response not successful: %s", rec.Body.String())
	}
	return envelope.Data
}

func TestGenerateSchedule(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	rec := postJSON(t, f.router, "/schedule/generate", validGenerateBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	userID, err := uuid.Parse(data["userId"].(string))
	if err != nil {
		t.Fatalf("response userId not a UUID: %v", err)
	}

	// Profile and schedule both persisted
	if _, err := f.profileRepo.GetByID(t.Context(), userID); err != nil {
		t.Errorf("profile not stored: %v", err)
	}
	stored, err := f.scheduleRepo.GetByUserID(t.Context(), userID)
	if err != nil {
		t.Fatalf("schedule not stored: %v", err)
	}
	if !stored.Complete() {
		t.Error("stored schedule should cover all seven days")
	}
	if stored.TotalActivities() == 0 {
		t.Error("stored schedule should have activities")
	}
}

func TestGenerateSchedule_KeepsProvidedUserID(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	userID := uuid.New()
	body := validGenerateBody()
	body["userId"] = userID.String()

	rec := postJSON(t, f.router, "/schedule/generate", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["userId"] != userID.String() {
		t.Errorf("userId = %v, want the provided %s", data["userId"], userID)
	}
}

func TestGenerateSchedule_Validation(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing goal", func(b map[string]any) { delete(b, "goal") }},
		{"empty work days", func(b map[string]any) { b["workDays"] = []string{} }},
		{"bad weekday", func(b map[string]any) { b["workDays"] = []string{"someday"} }},
		{"missing start time", func(b map[string]any) { delete(b, "startTime") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := validGenerateBody()
			tt.mutate(body)
			rec := postJSON(t, f.router, "/schedule/generate", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGenerateSchedule_InvalidJSON(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	req := httptest.NewRequest("POST", "/schedule/generate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateSchedule_StoreFailure(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()
	f.scheduleRepo.upsertErr = fmt.Errorf("db down")

	rec := postJSON(t, f.router, "/schedule/generate", validGenerateBody())
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetSchedule(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	userID := uuid.New()
	weekly := models.NewWeeklySchedule()
	weekly.Days[models.Monday] = models.DaySchedule{Activities: []models.Activity{{Time: "09:00", Activity: "Run"}}}
	weekly.Summary = "Week"
	if err := f.scheduleRepo.Upsert(t.Context(), userID, weekly); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/schedule/"+userID.String(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["userId"] != userID.String() {
		t.Errorf("userId = %v, want %s", data["userId"], userID)
	}
}

func TestGetSchedule_NotFound(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	req := httptest.NewRequest("GET", "/schedule/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetSchedule_BadUserID(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	req := httptest.NewRequest("GET", "/schedule/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRegenerateSchedule(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	// Seed a profile via generate, then regenerate
	rec := postJSON(t, f.router, "/schedule/generate", validGenerateBody())
	data := decodeData(t, rec)
	userID := data["userId"].(string)

	rec = postJSON(t, f.router, "/schedule/"+userID+"/regenerate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestRegenerateSchedule_NoProfile(t *testing.T) {
	t.Parallel()
	f := newScheduleFixture()

	rec := postJSON(t, f.router, "/schedule/"+uuid.NewString()+"/regenerate", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
