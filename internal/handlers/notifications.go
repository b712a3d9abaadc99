package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/notify"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
	"github.com/mytrainer/mytrainer-api/internal/validation"
)

// NotificationHandler handles device registration, notification settings, and
// direct send endpoints
type NotificationHandler struct {
	deviceRepo   database.DeviceRepositoryInterface
	settingsRepo database.SettingsRepositoryInterface
	scheduleRepo database.ScheduleRepositoryInterface
	dispatcher   *notify.Dispatcher
	pushT        *notify.PushTransport
	smsT         *notify.SMSTransport
	jobQueue     queue.JobQueue
	scheduler    *reminders.Scheduler
	logger       *zap.Logger
}

// NewNotificationHandler creates a new notification handler. pushT and smsT
// may be nil when the corresponding credentials are not configured.
func NewNotificationHandler(
	deviceRepo database.DeviceRepositoryInterface,
	settingsRepo database.SettingsRepositoryInterface,
	scheduleRepo database.ScheduleRepositoryInterface,
	dispatcher *notify.Dispatcher,
	pushT *notify.PushTransport,
	smsT *notify.SMSTransport,
	jobQueue queue.JobQueue,
	scheduler *reminders.Scheduler,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		deviceRepo:   deviceRepo,
		settingsRepo: settingsRepo,
		scheduleRepo: scheduleRepo,
		dispatcher:   dispatcher,
		pushT:        pushT,
		smsT:         smsT,
		jobQueue:     jobQueue,
		scheduler:    scheduler,
		logger:       logger,
	}
}

// RegisterRoutes registers notification routes on the given router
// The router should already have the /notifications prefix
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.RegisterToken).Methods("POST")
	r.HandleFunc("/settings/{userId}", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings/{userId}", h.UpdateSettings).Methods("PUT")
	r.HandleFunc("/sms", h.SendSMS).Methods("POST")
	r.HandleFunc("/push", h.SendPush).Methods("POST")
	r.HandleFunc("/broadcast", h.Broadcast).Methods("POST")
	r.HandleFunc("/schedule", h.ScheduleReminders).Methods("POST")
	r.HandleFunc("/test", h.Test).Methods("POST")
}

// RegisterTokenRequest registers a push token for a user
type RegisterTokenRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Token  string    `json:"token" validate:"required,min=10"`
}

// RegisterToken handles POST /notifications/register
func (h *NotificationHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Token and userId are required")
		return
	}

	device := &models.DeviceToken{UserID: req.UserID, Token: req.Token}
	if err := h.deviceRepo.Register(r.Context(), device); err != nil {
		h.logger.Error("device_register_failed", zap.String("user_id", req.UserID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to register token")
		return
	}

	h.logger.Info("device_registered", zap.String("user_id", req.UserID.String()))
	respondJSON(w, http.StatusOK, map[string]any{"message": "Token registered successfully"})
}

// GetSettings handles GET /notifications/settings/{userId}
func (h *NotificationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	settings, err := h.settingsRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// UpdateSettingsRequest mirrors NotificationSettings minus server-managed fields
type UpdateSettingsRequest struct {
	PushEnabled       bool   `json:"pushEnabled"`
	SMSEnabled        bool   `json:"smsEnabled"`
	PhoneNumber       string `json:"phoneNumber" validate:"omitempty,phone"`
	ActivityReminders bool   `json:"activityReminders"`
	DailyMotivation   bool   `json:"dailyMotivation"`
	EveningReflection bool   `json:"eveningReflection"`
	MorningTime       string `json:"morningTime" validate:"omitempty,time_of_day"`
	EveningTime       string `json:"eveningTime" validate:"omitempty,time_of_day"`
}

// UpdateSettings handles PUT /notifications/settings/{userId}. A settings
// change clears and rederives the user's reminders so stale timers never fire.
func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	settings := &models.NotificationSettings{
		UserID:            userID,
		PushEnabled:       req.PushEnabled,
		SMSEnabled:        req.SMSEnabled,
		PhoneNumber:       req.PhoneNumber,
		ActivityReminders: req.ActivityReminders,
		DailyMotivation:   req.DailyMotivation,
		EveningReflection: req.EveningReflection,
		MorningTime:       req.MorningTime,
		EveningTime:       req.EveningTime,
	}
	if settings.MorningTime == "" {
		settings.MorningTime = models.DefaultMorningTime
	}
	if settings.EveningTime == "" {
		settings.EveningTime = models.DefaultEveningTime
	}

	if err := h.settingsRepo.Upsert(r.Context(), settings); err != nil {
		h.logger.Error("settings_upsert_failed", zap.String("user_id", userID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save settings")
		return
	}

	h.rearmReminders(r, userID, settings)

	respondJSON(w, http.StatusOK, settings)
}

// SendSMSRequest is a direct SMS send
type SendSMSRequest struct {
	To      string    `json:"to" validate:"required"`
	Message string    `json:"message" validate:"required,max=1600"`
	UserID  uuid.UUID `json:"userId"`
}

// SendSMS handles POST /notifications/sms
func (h *NotificationHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	if h.smsT == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "SMS transport is not configured")
		return
	}

	var req SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.To == "" || req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Phone number and message are required")
		return
	}
	if err := validation.ValidatePhoneNumber(req.To); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid phone number format")
		return
	}

	n := notify.Notification{
		UserID:      req.UserID,
		Category:    models.CategoryTest,
		Message:     req.Message,
		PhoneNumber: req.To,
		SMSEnabled:  true,
	}
	if err := h.smsT.Send(r.Context(), n); err != nil {
		h.logger.Error("sms_send_failed", zap.String("user_id", req.UserID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to send SMS")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "SMS sent successfully"})
}

// SendPushRequest is a direct push send
type SendPushRequest struct {
	Token    string           `json:"token" validate:"required"`
	Message  string           `json:"message" validate:"required"`
	Activity *models.Activity `json:"activity,omitempty"`
	UserID   uuid.UUID        `json:"userId"`
}

// SendPush handles POST /notifications/push
func (h *NotificationHandler) SendPush(w http.ResponseWriter, r *http.Request) {
	if h.pushT == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Push transport is not configured")
		return
	}

	var req SendPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Token == "" || req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Token and message are required")
		return
	}

	n := notify.Notification{
		UserID:      req.UserID,
		Category:    models.CategoryTest,
		Title:       notify.TitleFor(models.CategoryTest),
		Message:     req.Message,
		Activity:    req.Activity,
		DeviceToken: req.Token,
		PushEnabled: true,
	}
	if err := h.pushT.Send(r.Context(), n); err != nil {
		h.logger.Error("push_send_failed", zap.String("user_id", req.UserID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to send push notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"message": "Push notification sent successfully"})
}

// BroadcastRequest is a push broadcast to every registered device
type BroadcastRequest struct {
	Message string `json:"message" validate:"required"`
	Title   string `json:"title"`
}

// Broadcast handles POST /notifications/broadcast by enqueueing a broadcast
// job; the worker fans it out to every registered device.
func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message is required")
		return
	}

	job := queue.NewBroadcastJob(req.Title, req.Message)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("broadcast_enqueue_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to queue broadcast")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"message": "Broadcast queued",
		"jobId":   job.ID,
	})
}

// ScheduleRemindersRequest arms reminders for a user's stored schedule
type ScheduleRemindersRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// ScheduleReminders handles POST /notifications/schedule: rederives and arms
// the user's reminders from their stored schedule and settings.
func (h *NotificationHandler) ScheduleReminders(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.UserID == uuid.Nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "userId is required")
		return
	}

	weekly, err := h.scheduleRepo.GetByUserID(r.Context(), req.UserID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Schedule not found")
		return
	}
	settings, err := h.settingsRepo.GetByUserID(r.Context(), req.UserID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load settings")
		return
	}

	count, err := h.scheduler.Register(weekly, settings)
	if err != nil {
		h.logger.Error("reminder_register_failed", zap.String("user_id", req.UserID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to schedule notifications")
		return
	}

	h.logger.Info("reminders_scheduled_via_api",
		zap.String("user_id", req.UserID.String()),
		zap.Int("reminder_count", count),
	)
	respondJSON(w, http.StatusOK, map[string]any{
		"message":       "Notifications scheduled successfully",
		"reminderCount": count,
	})
}

// TestRequest triggers a test notification through the user's enabled transports
type TestRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

// Test handles POST /notifications/test
func (h *NotificationHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req TestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.UserID == uuid.Nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "userId is required")
		return
	}

	settings, err := h.settingsRepo.GetByUserID(r.Context(), req.UserID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load settings")
		return
	}
	token, err := h.deviceRepo.GetByUserID(r.Context(), req.UserID)
	if err != nil {
		h.logger.Error("device_lookup_failed", zap.String("user_id", req.UserID.String()), zap.Error(err))
	}

	attempted := h.dispatcher.Dispatch(r.Context(), notify.Notification{
		UserID:      req.UserID,
		Category:    models.CategoryTest,
		Message:     "🧪 Test notification from MyTrainer!\n\nThis is a test to ensure your notifications are working properly. If you received this, your notification system is set up correctly!",
		DeviceToken: token,
		PhoneNumber: settings.PhoneNumber,
		PushEnabled: settings.PushEnabled,
		SMSEnabled:  settings.SMSEnabled,
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"message":             "Test notification dispatched",
		"transportsAttempted": attempted,
	})
}

// rearmReminders rederives reminders after a settings change when the user
// has a stored schedule. Absence of a schedule just clears any armed entries.
func (h *NotificationHandler) rearmReminders(r *http.Request, userID uuid.UUID, settings *models.NotificationSettings) {
	if h.scheduler == nil {
		return
	}

	weekly, err := h.scheduleRepo.GetByUserID(r.Context(), userID)
	if err != nil {
		h.scheduler.Clear(userID)
		return
	}
	if _, err := h.scheduler.Register(weekly, settings); err != nil {
		h.logger.Error("reminder_register_failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
