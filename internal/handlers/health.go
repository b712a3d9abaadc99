package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mytrainer/mytrainer-api/internal/database"
	"github.com/mytrainer/mytrainer-api/internal/queue"
	"github.com/mytrainer/mytrainer-api/internal/reminders"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	db          *database.DB
	redisClient *redis.Client
	jobQueue    queue.JobQueue
	deviceRepo  database.DeviceRepositoryInterface
	scheduler   *reminders.Scheduler
}

// NewHealthChecker creates a new health checker. Optional dependencies may be
// nil; their checks are skipped.
func NewHealthChecker(db *database.DB, redisClient *redis.Client, jobQueue queue.JobQueue, deviceRepo database.DeviceRepositoryInterface, scheduler *reminders.Scheduler) *HealthChecker {
	return &HealthChecker{
		db:          db,
		redisClient: redisClient,
		jobQueue:    jobQueue,
		deviceRepo:  deviceRepo,
		scheduler:   scheduler,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status          string            `json:"status"`
	Timestamp       string            `json:"timestamp"`
	Checks          map[string]string `json:"checks,omitempty"`
	ActiveUsers     *int              `json:"activeUsers,omitempty"`
	ActiveReminders *int              `json:"activeReminders,omitempty"`
	ActiveDevices   *int              `json:"activeDevices,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)

		if h.db != nil {
			if err := h.checkDatabase(r.Context()); err != nil {
				response.Status = "unhealthy"
				checks["database"] = "unhealthy: " + err.Error()
			} else {
				checks["database"] = "healthy"
			}
		}

		if h.redisClient != nil {
			if err := h.redisClient.Ping(r.Context()).Err(); err != nil {
				response.Status = "unhealthy"
				checks["redis"] = "unhealthy: " + err.Error()
			} else {
				checks["redis"] = "healthy"
			}
		}

		if h.jobQueue != nil {
			if err := h.jobQueue.HealthCheck(r.Context()); err != nil {
				response.Status = "unhealthy"
				checks["queue"] = "unhealthy: " + err.Error()
			} else {
				checks["queue"] = "healthy"
			}
		}

		if h.scheduler != nil {
			users := h.scheduler.ActiveUsers()
			armed := h.scheduler.ActiveReminders()
			response.ActiveUsers = &users
			response.ActiveReminders = &armed
		}

		if h.deviceRepo != nil {
			if count, err := h.deviceRepo.Count(r.Context()); err == nil {
				response.ActiveDevices = &count
			}
		}

		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
		return
	}

	// Basic mode - just return that the server is running
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// checkDatabase verifies the database connection
func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return h.db.PingContext(ctx)
}
