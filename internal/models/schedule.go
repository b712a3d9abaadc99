package models

// Activity is a single scheduled block within a day.
type Activity struct {
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description,omitempty"`
	Tips        string `json:"tips,omitempty"`
}

// DaySchedule holds the ordered activities for one day.
type DaySchedule struct {
	Activities []Activity `json:"activities"`
}

// WeeklySchedule is a full seven-day plan with its summary and tips.
type WeeklySchedule struct {
	Days           map[Weekday]DaySchedule `json:"schedule"`
	Summary        string                  `json:"summary"`
	MotivationTips []string                `json:"motivationTips"`
}

// NewWeeklySchedule returns an empty schedule with the day map allocated.
func NewWeeklySchedule() *WeeklySchedule {
	return &WeeklySchedule{Days: make(map[Weekday]DaySchedule, 7)}
}

// Day returns the schedule for the given day; missing days come back empty.
func (s *WeeklySchedule) Day(d Weekday) DaySchedule {
	if s == nil || s.Days == nil {
		return DaySchedule{}
	}
	return s.Days[d]
}

// TotalActivities counts activities across all seven days.
func (s *WeeklySchedule) TotalActivities() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, day := range s.Days {
		total += len(day.Activities)
	}
	return total
}

// Complete reports whether every weekday has an entry in the day map.
func (s *WeeklySchedule) Complete() bool {
	if s == nil || s.Days == nil {
		return false
	}
	for _, d := range AllWeekdays() {
		if _, ok := s.Days[d]; !ok {
			return false
		}
	}
	return true
}
