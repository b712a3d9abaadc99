package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mytrainer/mytrainer-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	// phoneNumberRe matches E.164 phone numbers (optionally prefixed with +).
	phoneNumberRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	// timeOfDayRe matches 24-hour HH:MM times.
	timeOfDayRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators for domain values
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("weekday", validateWeekday); err != nil {
		panic(fmt.Sprintf("failed to register weekday validator: %v", err))
	}
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("phone", validatePhone); err != nil {
		panic(fmt.Sprintf("failed to register phone validator: %v", err))
	}
}

// validateWeekday validates that a string is one of the seven weekday names
func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := models.ParseWeekday(fl.Field().String())
	return ok
}

// validateTimeOfDay validates a 24-hour HH:MM string
func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRe.MatchString(fl.Field().String())
}

// validatePhone validates an E.164 phone number, ignoring embedded spaces
func validatePhone(fl validator.FieldLevel) bool {
	return ValidatePhoneNumber(fl.Field().String()) == nil
}

// ValidatePhoneNumber checks a phone number against the E.164 format used by
// the SMS transport. Embedded whitespace is stripped before matching.
func ValidatePhoneNumber(number string) error {
	cleaned := strings.ReplaceAll(number, " ", "")
	if !phoneNumberRe.MatchString(cleaned) {
		return fmt.Errorf("invalid phone number format: must match E.164 (+14155550123)")
	}
	return nil
}

// ValidateTimeOfDay checks an HH:MM 24-hour time string
func ValidateTimeOfDay(value string) error {
	if !timeOfDayRe.MatchString(value) {
		return fmt.Errorf("invalid time of day: %s (must be HH:MM, 24-hour)", value)
	}
	return nil
}

// ValidateWeekday checks a weekday name case-insensitively
func ValidateWeekday(value string) error {
	if _, ok := models.ParseWeekday(value); !ok {
		return fmt.Errorf("invalid weekday: %s", value)
	}
	return nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
