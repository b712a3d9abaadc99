package schedule

import (
	"fmt"

	"github.com/mytrainer/mytrainer-api/internal/models"
)

// FallbackGenerator produces a deterministic weekly schedule with no external
// call. It covers the no-credential mode and truncated-completion recovery.
type FallbackGenerator struct{}

// NewFallbackGenerator creates a fallback generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate builds a full seven-day schedule from the profile alone. Identical
// input always yields identical output.
func (g *FallbackGenerator) Generate(profile *models.UserProfile) *models.WeeklySchedule {
	startHour := profile.StartHour()
	endHour := profile.EndHour()

	result := models.NewWeeklySchedule()
	for _, day := range models.AllWeekdays() {
		result.Days[day] = g.generateDay(profile, day, startHour, endHour)
	}

	result.Summary = fmt.Sprintf(
		"Your personalized weekly schedule from %s to %s. Focus on your goal: %s",
		profile.StartTime, profile.EndTime, profile.Goal,
	)
	result.MotivationTips = []string{
		"Stay consistent with your routine",
		"Track your progress daily",
		"Celebrate small wins along the way",
		"Remember why you started",
	}
	return result
}

// generateDay emits one activity per hour in [startHour, endHour). When
// endHour <= startHour the day comes back empty, which is accepted.
func (g *FallbackGenerator) generateDay(profile *models.UserProfile, day models.Weekday, startHour, endHour int) models.DaySchedule {
	isWorkDay := profile.IsWorkDay(day)

	var activities []models.Activity
	for hour := startHour; hour < endHour; hour++ {
		timeRange := fmt.Sprintf("%02d:00-%02d:00", hour, hour+1)

		var a models.Activity
		if isWorkDay {
			a = workDayActivity(hour, startHour, endHour)
		} else {
			a = restDayActivity(hour, startHour)
		}
		a.Time = timeRange
		activities = append(activities, a)
	}

	return models.DaySchedule{Activities: activities}
}

func workDayActivity(hour, startHour, endHour int) models.Activity {
	switch {
	case hour == startHour:
		return models.Activity{
			Activity:    "Morning Routine & Goal Review",
			Description: "Review today's objectives and prepare mentally for the day ahead",
			Tips:        "Write down your top 3 priorities for today",
		}
	case hour == startHour+2:
		return models.Activity{
			Activity:    "Morning Break",
			Description: "Take a short break to refresh and recharge",
			Tips:        "Stretch, hydrate, and take a few deep breaths",
		}
	case hour == startHour+4:
		return models.Activity{
			Activity:    "Primary Goal Work Session",
			Description: "Deep focus work on your main goal - eliminate distractions",
			Tips:        "Use the Pomodoro technique: 25 minutes work, 5 minutes break",
		}
	case hour == startHour+6:
		return models.Activity{
			Activity:    "Afternoon Break",
			Description: "Take a longer break for lunch and mental refresh",
			Tips:        "Eat a healthy meal and step away from your workspace",
		}
	case hour == endHour-2:
		return models.Activity{
			Activity:    "Review & Planning",
			Description: "Review today's progress and plan for tomorrow",
			Tips:        "Celebrate wins and identify areas for improvement",
		}
	case hour == endHour-1:
		return models.Activity{
			Activity:    "Wrap-up & Preparation",
			Description: "Organize workspace and prepare for the next day",
			Tips:        "Clear your desk and set up tomorrow's priorities",
		}
	default:
		return models.Activity{
			Activity:    fmt.Sprintf("Goal Work Session %d", hour-startHour),
			Description: "Focused work on your primary goal with specific tasks",
			Tips:        "Stay focused and track your progress",
		}
	}
}

func restDayActivity(hour, startHour int) models.Activity {
	switch {
	case hour == startHour:
		return models.Activity{
			Activity:    "Morning Reflection",
			Description: "Start the day with gratitude and reflection",
			Tips:        "Write down 3 things you're grateful for",
		}
	case hour == startHour+2:
		return models.Activity{
			Activity:    "Light Goal Work",
			Description: "Gentle progress on your goals without pressure",
			Tips:        "Keep it enjoyable and stress-free",
		}
	case hour == startHour+4:
		return models.Activity{
			Activity:    "Rest & Recharge",
			Description: "Take time to relax and recharge your energy",
			Tips:        "Do something you enjoy that's not goal-related",
		}
	default:
		return models.Activity{
			Activity:    "Weekend Activities",
			Description: "Enjoy your time off while staying connected to your goals",
			Tips:        "Balance rest with gentle progress",
		}
	}
}
