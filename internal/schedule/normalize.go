package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var meridiemRe = regexp.MustCompile(`(?i)\s*(AM|PM)\s*`)

// parseTimeComponent strips AM/PM markers and, for a range, keeps the start
// component. Returns "" when nothing usable remains.
func parseTimeComponent(value string) string {
	clean := strings.TrimSpace(meridiemRe.ReplaceAllString(value, ""))
	if clean == "" {
		return ""
	}
	if idx := strings.IndexByte(clean, '-'); idx >= 0 {
		clean = strings.TrimSpace(clean[:idx])
	}
	return clean
}

// NormalizeTime normalizes a time or time-range string to HH:MM 24-hour form.
// Ranges collapse to their start. Returns "" on empty or unparseable input;
// callers keep the original string in that case rather than failing.
func NormalizeTime(value string) string {
	parsed := parseTimeComponent(value)
	if parsed == "" {
		return ""
	}

	hourPart, minutePart, found := strings.Cut(parsed, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil || hour < 0 || hour > 23 {
		return ""
	}

	minute := "00"
	if found {
		minutePart = strings.TrimSpace(minutePart)
		if minutePart != "" {
			minute = minutePart
		}
	}

	return fmt.Sprintf("%02d:%s", hour, minute)
}

// NormalizeTimeRange normalizes both sides of a "start-end" range. If either
// side fails to normalize, the original value is returned unchanged.
func NormalizeTimeRange(value string) string {
	if !strings.Contains(value, "-") {
		return value
	}
	start, end, _ := strings.Cut(value, "-")
	normalizedStart := NormalizeTime(start)
	normalizedEnd := NormalizeTime(end)
	if normalizedStart == "" || normalizedEnd == "" {
		return value
	}
	return normalizedStart + "-" + normalizedEnd
}
