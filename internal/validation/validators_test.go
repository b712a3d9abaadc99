package validation

import "testing"

func TestValidatePhoneNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"e164 with plus", "+14155550123", false},
		{"no plus", "14155550123", false},
		{"embedded spaces", "+1 415 555 0123", false},
		{"leading zero", "+04155550123", true},
		{"too short", "+1", true},
		{"too long", "+1234567890123456", true},
		{"letters", "+1415call", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePhoneNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePhoneNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeOfDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"07:30", false},
		{"7:30", false},
		{"00:00", false},
		{"23:59", false},
		{"24:00", true},
		{"12:60", true},
		{"noon", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			err := ValidateTimeOfDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeOfDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWeekday(t *testing.T) {
	t.Parallel()
	if err := ValidateWeekday("Friday"); err != nil {
		t.Errorf("ValidateWeekday(Friday) error = %v", err)
	}
	if err := ValidateWeekday("someday"); err == nil {
		t.Error("ValidateWeekday(someday) should fail")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps newlines and tabs", "a\nb\tc", "a\nb\tc"},
		{"strips control characters", "a\x00b\x1bc", "abc"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructValidation(t *testing.T) {
	t.Parallel()
	type payload struct {
		Day   string `validate:"weekday"`
		At    string `validate:"time_of_day"`
		Phone string `validate:"omitempty,phone"`
	}

	valid := payload{Day: "monday", At: "07:30", Phone: "+14155550123"}
	if err := Validate.Struct(&valid); err != nil {
		t.Errorf("valid payload failed: %v", err)
	}

	invalid := payload{Day: "someday", At: "25:00", Phone: "nope"}
	if err := Validate.Struct(&invalid); err == nil {
		t.Error("invalid payload should fail validation")
	}
}
