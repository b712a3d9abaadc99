package reminders

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mytrainer/mytrainer-api/internal/models"
	"github.com/mytrainer/mytrainer-api/internal/schedule"
)

const (
	// activityLeadTime is how far before an activity's start its reminder fires.
	activityLeadTime = 5 * time.Minute

	defaultActivityTip = "Stay focused and give it your best!"
)

// Deriver turns a weekly schedule plus notification settings into the set of
// reminders that should fire each week.
type Deriver struct{}

// NewDeriver creates a reminder deriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive produces every reminder the settings allow: per non-empty day a
// morning motivation and evening reflection, plus one lead-time reminder per
// timed activity. NextFireAt is always strictly after now and within 7 days.
func (d *Deriver) Derive(now time.Time, weekly *models.WeeklySchedule, settings *models.NotificationSettings) []models.ScheduledReminder {
	if weekly == nil || settings == nil {
		return nil
	}

	var out []models.ScheduledReminder
	for _, day := range models.AllWeekdays() {
		activities := weekly.Day(day).Activities
		if len(activities) == 0 {
			continue
		}

		if settings.DailyMotivation {
			morning := settings.MorningTime
			if morning == "" {
				morning = models.DefaultMorningTime
			}
			out = append(out, models.ScheduledReminder{
				ID:        uuid.New(),
				UserID:    settings.UserID,
				Category:  models.CategoryMorningMotivation,
				Day:       day,
				TimeOfDay: morning,
				Message: fmt.Sprintf(
					"Good morning! Ready to crush your goals today? You have %d activities planned. Let's make today count! 💪",
					len(activities),
				),
				NextFireAt: NextFire(now, day, morning),
			})
		}

		if settings.EveningReflection {
			evening := settings.EveningTime
			if evening == "" {
				evening = models.DefaultEveningTime
			}
			out = append(out, models.ScheduledReminder{
				ID:         uuid.New(),
				UserID:     settings.UserID,
				Category:   models.CategoryEveningReflection,
				Day:        day,
				TimeOfDay:  evening,
				Message:    "Great work today! Take a moment to reflect on your progress. What went well? What can you improve tomorrow? 📝",
				NextFireAt: NextFire(now, day, evening),
			})
		}

		if settings.ActivityReminders {
			for i := range activities {
				activity := activities[i]
				reminder, ok := d.activityReminder(now, settings.UserID, day, activity)
				if ok {
					out = append(out, reminder)
				}
			}
		}
	}
	return out
}

// activityReminder derives a reminder firing activityLeadTime before the
// activity's start. Activities without a time or label are skipped.
func (d *Deriver) activityReminder(now time.Time, userID uuid.UUID, day models.Weekday, activity models.Activity) (models.ScheduledReminder, bool) {
	if activity.Time == "" || activity.Activity == "" {
		return models.ScheduledReminder{}, false
	}

	start := schedule.NormalizeTime(activity.Time)
	if start == "" {
		return models.ScheduledReminder{}, false
	}
	hour, minute, ok := splitHHMM(start)
	if !ok {
		return models.ScheduledReminder{}, false
	}

	total := hour*60 + minute - int(activityLeadTime.Minutes())
	if total < 0 {
		total += 24 * 60
	}
	fireAt := fmt.Sprintf("%02d:%02d", total/60, total%60)

	tip := activity.Tips
	if tip == "" {
		tip = defaultActivityTip
	}
	message := fmt.Sprintf("⏰ Time for: %s\n\n%s\n\n💡 Tip: %s", activity.Activity, activity.Description, tip)

	return models.ScheduledReminder{
		ID:         uuid.New(),
		UserID:     userID,
		Category:   models.CategoryActivityReminder,
		Day:        day,
		TimeOfDay:  fireAt,
		Message:    message,
		Activity:   &activity,
		NextFireAt: NextFire(now, day, fireAt),
	}, true
}

// NextFire computes the next absolute fire time for a weekday and HH:MM
// time-of-day. The day offset uses Sunday=0 indexing; a result not strictly
// after now moves out exactly one week, so the first fire always lands in
// (now, now+7d].
func NextFire(now time.Time, day models.Weekday, timeOfDay string) time.Time {
	hour, minute, ok := splitHHMM(timeOfDay)
	if !ok {
		hour, minute = 0, 0
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	offset := (day.Index() - int(now.Weekday()) + 7) % 7
	target = target.AddDate(0, 0, offset)
	if !target.After(now) {
		target = target.AddDate(0, 0, 7)
	}
	return target
}

func splitHHMM(value string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(value, ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
