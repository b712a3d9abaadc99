package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
	"github.com/mytrainer/mytrainer-api/internal/schedule"
	"github.com/mytrainer/mytrainer-api/internal/validation"
)

// ScheduleHandler handles schedule generation and retrieval
type ScheduleHandler struct {
	profileRepo  database.ProfileRepositoryInterface
	scheduleRepo database.ScheduleRepositoryInterface
	settingsRepo database.SettingsRepositoryInterface
	generator    *schedule.Generator
	scheduler    *reminders.Scheduler
	logger       *zap.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(
	profileRepo database.ProfileRepositoryInterface,
	scheduleRepo database.ScheduleRepositoryInterface,
	settingsRepo database.SettingsRepositoryInterface,
	generator *schedule.Generator,
	scheduler *reminders.Scheduler,
	logger *zap.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		profileRepo:  profileRepo,
		scheduleRepo: scheduleRepo,
		settingsRepo: settingsRepo,
		generator:    generator,
		scheduler:    scheduler,
		logger:       logger,
	}
}

// RegisterRoutes registers schedule routes on the given router
// The router should already have the /schedule prefix
func (h *ScheduleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate", h.Generate).Methods("POST")
	r.HandleFunc("/{userId}", h.Get).Methods("GET")
	r.HandleFunc("/{userId}/regenerate", h.Regenerate).Methods("POST")
}

// GenerateScheduleRequest carries the onboarding answers
type GenerateScheduleRequest struct {
	UserID      *uuid.UUID `json:"userId,omitempty"`
	Goal        string     `json:"goal" validate:"required,min=1,max=2000"`
	WorkDays    []string   `json:"workDays" validate:"required,min=1,max=7,dive,weekday"`
	StartTime   string     `json:"startTime" validate:"required"`
	EndTime     string     `json:"endTime" validate:"required"`
	Preferences string     `json:"preferences" validate:"max=2000"`
}

// GenerateScheduleResponse is the generated schedule plus its owner
type GenerateScheduleResponse struct {
	UserID   uuid.UUID              `json:"userId"`
	Schedule *models.WeeklySchedule `json:"schedule"`
}

// Generate handles POST /schedule/generate: stores the profile, generates a
// weekly schedule, persists it, and arms the user's reminders.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	userID := uuid.New()
	if req.UserID != nil && *req.UserID != uuid.Nil {
		userID = *req.UserID
	}

	profile := &models.UserProfile{
		ID:          userID,
		Goal:        validation.SanitizeText(req.Goal),
		WorkDays:    req.WorkDays,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Preferences: validation.SanitizeText(req.Preferences),
	}

	ctx := r.Context()
	if err := h.profileRepo.Upsert(ctx, profile); err != nil {
		h.logger.Error("profile_upsert_failed", zap.String("user_id", userID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save profile")
		return
	}

	weekly, ok := h.generateAndStore(w, r, profile)
	if !ok {
		return
	}

	respondJSON(w, http.StatusCreated, GenerateScheduleResponse{
		UserID:   userID,
		Schedule: weekly,
	})
}

// Get handles GET /schedule/{userId}
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	weekly, err := h.scheduleRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Schedule not found")
		return
	}

	respondJSON(w, http.StatusOK, GenerateScheduleResponse{
		UserID:   userID,
		Schedule: weekly,
	})
}

// Regenerate handles POST /schedule/{userId}/regenerate: re-runs generation
// from the stored profile. Regeneration is the universal recovery action for
// a failed or degraded schedule.
func (h *ScheduleHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	profile, err := h.profileRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Profile not found")
		return
	}

	weekly, ok := h.generateAndStore(w, r, profile)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, GenerateScheduleResponse{
		UserID:   userID,
		Schedule: weekly,
	})
}

// generateAndStore runs the generator, persists the result, and re-arms the
// user's reminders. On failure it writes the error response and returns false.
func (h *ScheduleHandler) generateAndStore(w http.ResponseWriter, r *http.Request, profile *models.UserProfile) (*models.WeeklySchedule, bool) {
	ctx := r.Context()

	weekly, report, err := h.generator.Generate(ctx, profile)
	if err != nil {
		var genErr *schedule.GenerationError
		if errors.As(err, &genErr) {
			h.logger.Error("schedule_generation_failed",
				zap.String("user_id", profile.ID.String()),
				zap.Int("status_code", genErr.StatusCode),
				zap.Error(err),
			)
		}
		respondJSONError(w, http.StatusBadGateway, "Generation Failed", schedule.ErrGenerationFailed.Error())
		return nil, false
	}
	if report != nil {
		report.Log(h.logger, profile.ID.String())
	}

	if err := h.scheduleRepo.Upsert(ctx, profile.ID, weekly); err != nil {
		h.logger.Error("schedule_upsert_failed", zap.String("user_id", profile.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save schedule")
		return nil, false
	}

	settings, err := h.settingsRepo.GetByUserID(ctx, profile.ID)
	if err != nil {
		h.logger.Error("settings_load_failed", zap.String("user_id", profile.ID.String()), zap.Error(err))
		settings = models.DefaultNotificationSettings(profile.ID)
	}

	if h.scheduler != nil {
		if _, err := h.scheduler.Register(weekly, settings); err != nil {
			// Reminders are best-effort; the schedule itself is already stored
			h.logger.Error("reminder_register_failed", zap.String("user_id", profile.ID.String()), zap.Error(err))
		}
	}

	return weekly, true
}
