package schedule

import (
	"github.com/mytrainer/mytrainer-api/internal/models"
	"go.uber.org/zap"
)

// RepairReport records what was fixed while validating a parsed schedule.
// Malformed or missing pieces are repaired silently as far as the caller is
// concerned, but the repairs themselves are logged.
type RepairReport struct {
	BackfilledDays      []models.Weekday
	NormalizedTimes     int
	DefaultedSummary    bool
	DefaultedMotivation bool
}

// Clean reports whether the parsed schedule needed no repairs.
func (r *RepairReport) Clean() bool {
	return len(r.BackfilledDays) == 0 && r.NormalizedTimes == 0 &&
		!r.DefaultedSummary && !r.DefaultedMotivation
}

// Log writes the report at info level when anything was repaired.
func (r *RepairReport) Log(logger *zap.Logger, userID string) {
	if logger == nil || r.Clean() {
		return
	}
	days := make([]string, 0, len(r.BackfilledDays))
	for _, d := range r.BackfilledDays {
		days = append(days, string(d))
	}
	logger.Info("schedule_repaired",
		zap.String("user_id", userID),
		zap.Strings("backfilled_days", days),
		zap.Int("normalized_times", r.NormalizedTimes),
		zap.Bool("defaulted_summary", r.DefaultedSummary),
		zap.Bool("defaulted_motivation_tips", r.DefaultedMotivation),
	)
}

// rawSchedule mirrors the JSON shape the completion endpoint is asked for.
type rawSchedule struct {
	Schedule map[string]struct {
		Activities []models.Activity `json:"activities"`
	} `json:"schedule"`
	Summary        string   `json:"summary"`
	MotivationTips []string `json:"motivation_tips"`
}

// Repair validates a parsed schedule against the seven-weekday shape: present
// days get their activity time ranges normalized, missing or empty days are
// backfilled with a single rest-day activity spanning the profile's window.
func Repair(parsed *rawSchedule, profile *models.UserProfile) (*models.WeeklySchedule, *RepairReport) {
	report := &RepairReport{}
	result := models.NewWeeklySchedule()

	result.Summary = parsed.Summary
	if result.Summary == "" {
		result.Summary = "Your personalized weekly schedule"
		report.DefaultedSummary = true
	}
	result.MotivationTips = parsed.MotivationTips
	if len(result.MotivationTips) == 0 {
		result.MotivationTips = []string{"Stay consistent", "Track progress", "Celebrate wins"}
		report.DefaultedMotivation = true
	}

	for _, day := range models.AllWeekdays() {
		raw, ok := parsed.Schedule[string(day)]
		if !ok || len(raw.Activities) == 0 {
			result.Days[day] = backfillRestDay(profile)
			report.BackfilledDays = append(report.BackfilledDays, day)
			continue
		}

		activities := make([]models.Activity, len(raw.Activities))
		for i, a := range raw.Activities {
			normalized := NormalizeTimeRange(a.Time)
			if normalized != a.Time {
				report.NormalizedTimes++
			}
			a.Time = normalized
			activities[i] = a
		}
		result.Days[day] = models.DaySchedule{Activities: activities}
	}

	return result, report
}

func backfillRestDay(profile *models.UserProfile) models.DaySchedule {
	return models.DaySchedule{
		Activities: []models.Activity{{
			Time:        profile.StartTime + "-" + profile.EndTime,
			Activity:    "Rest Day",
			Description: "Take time to recharge and prepare for the week ahead",
			Tips:        "Use this time for reflection and planning",
		}},
	}
}
