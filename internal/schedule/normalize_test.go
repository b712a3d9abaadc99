package schedule

import "testing"

func TestNormalizeTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "14:30", "14:30"},
		{"single digit hour", "9:00", "09:00"},
		{"am marker", "8:00 AM", "08:00"},
		{"pm marker lowercase", "10:30pm", "10:30"},
		{"range keeps start", "8:00 AM-9:00 AM", "08:00"},
		{"hour only", "14", "14:00"},
		{"empty", "", ""},
		{"garbage", "sometime in the morning", ""},
		{"hour out of range", "25:00", ""},
		{"negative hour", "-1:00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeTime(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimeRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"both sides normalized", "9:00 AM-10:00 AM", "09:00-10:00"},
		{"already normalized", "09:00-10:00", "09:00-10:00"},
		{"no dash passes through", "09:00", "09:00"},
		{"unparseable side keeps original", "morning-10:00", "morning-10:00"},
		{"empty passes through", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeTimeRange(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeTimeRange(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
