package models

import "testing"

func TestParseWeekday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input  string
		want   Weekday
		wantOK bool
	}{
		{"monday", Monday, true},
		{"Monday", Monday, true},
		{"  SUNDAY  ", Sunday, true},
		{"wednesday", Wednesday, true},
		{"someday", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseWeekday(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseWeekday(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		day  Weekday
		want int
	}{
		{Sunday, 0},
		{Monday, 1},
		{Saturday, 6},
		{Weekday("someday"), -1},
	}
	for _, tt := range tests {
		if got := tt.day.Index(); got != tt.want {
			t.Errorf("%q.Index() = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestWeekdayTitle(t *testing.T) {
	t.Parallel()
	if got := Monday.Title(); got != "Monday" {
		t.Errorf("Title() = %q, want Monday", got)
	}
	if got := Weekday("").Title(); got != "" {
		t.Errorf("empty Title() = %q, want empty", got)
	}
}

func TestAllWeekdaysMondayFirst(t *testing.T) {
	t.Parallel()
	days := AllWeekdays()
	if len(days) != 7 {
		t.Fatalf("AllWeekdays() = %d days, want 7", len(days))
	}
	if days[0] != Monday || days[6] != Sunday {
		t.Errorf("AllWeekdays() order = %v, want Monday first and Sunday last", days)
	}
}

func TestUserProfile_IsWorkDay(t *testing.T) {
	t.Parallel()
	p := &UserProfile{WorkDays: []string{"Monday", "wednesday"}}
	if !p.IsWorkDay(Monday) {
		t.Error("IsWorkDay(Monday) = false, want true (case-insensitive)")
	}
	if !p.IsWorkDay(Wednesday) {
		t.Error("IsWorkDay(Wednesday) = false, want true")
	}
	if p.IsWorkDay(Sunday) {
		t.Error("IsWorkDay(Sunday) = true, want false")
	}
}

func TestUserProfile_Hours(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart int
		wantEnd   int
	}{
		{"normal", "09:00", "17:00", 9, 17},
		{"single digit", "8:30", "18:45", 8, 18},
		{"hour only", "7", "22", 7, 22},
		{"unparseable defaults", "early", "late", 9, 17},
		{"empty defaults", "", "", 9, 17},
		{"out of range defaults", "25:00", "-3:00", 9, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &UserProfile{StartTime: tt.start, EndTime: tt.end}
			if got := p.StartHour(); got != tt.wantStart {
				t.Errorf("StartHour() = %d, want %d", got, tt.wantStart)
			}
			if got := p.EndHour(); got != tt.wantEnd {
				t.Errorf("EndHour() = %d, want %d", got, tt.wantEnd)
			}
		})
	}
}
