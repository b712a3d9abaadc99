package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday is a lowercase day-of-week name as stored in profiles and schedules.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// AllWeekdays returns the seven weekdays in Monday-first order, matching the
// order schedules are rendered in.
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Index returns the day index with Sunday as 0, matching cron day-of-week
// numbering. Returns -1 for an unknown value.
func (w Weekday) Index() int {
	switch w {
	case Sunday:
		return 0
	case Monday:
		return 1
	case Tuesday:
		return 2
	case Wednesday:
		return 3
	case Thursday:
		return 4
	case Friday:
		return 5
	case Saturday:
		return 6
	}
	return -1
}

// Title returns the capitalized display form of the weekday.
func (w Weekday) Title() string {
	s := string(w)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseWeekday parses a weekday name case-insensitively.
func ParseWeekday(s string) (Weekday, bool) {
	switch Weekday(strings.ToLower(strings.TrimSpace(s))) {
	case Sunday:
		return Sunday, true
	case Monday:
		return Monday, true
	case Tuesday:
		return Tuesday, true
	case Wednesday:
		return Wednesday, true
	case Thursday:
		return Thursday, true
	case Friday:
		return Friday, true
	case Saturday:
		return Saturday, true
	}
	return "", false
}

// UserProfile holds the onboarding answers a weekly schedule is generated from.
type UserProfile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Goal        string    `json:"goal" db:"goal" validate:"required,min=1,max=2000"`
	WorkDays    []string  `json:"workDays" db:"work_days" validate:"required,min=1,max=7,dive,weekday"`
	StartTime   string    `json:"startTime" db:"start_time" validate:"required"`
	EndTime     string    `json:"endTime" db:"end_time" validate:"required"`
	Preferences string    `json:"preferences,omitempty" db:"preferences" validate:"max=2000"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// IsWorkDay reports whether the given day is one of the profile's work days.
func (p *UserProfile) IsWorkDay(day Weekday) bool {
	for _, d := range p.WorkDays {
		if strings.EqualFold(d, string(day)) {
			return true
		}
	}
	return false
}

// StartHour returns the hour component of StartTime, defaulting to 9 when the
// value cannot be parsed.
func (p *UserProfile) StartHour() int {
	return leadingHour(p.StartTime, 9)
}

// EndHour returns the hour component of EndTime, defaulting to 17 when the
// value cannot be parsed.
func (p *UserProfile) EndHour() int {
	return leadingHour(p.EndTime, 17)
}

func leadingHour(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, ':'); idx >= 0 {
		value = value[:idx]
	}
	if h, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && h >= 0 && h <= 23 {
		return h
	}
	return fallback
}
