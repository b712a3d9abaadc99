package schedule

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// maxResponseLength is the length past which an unparseable completion is
	// treated as truncated output rather than a malformed one.
	maxResponseLength = 3000
	// ellipsisMarker in an unparseable completion means the model collapsed a
	// day's activities into shorthand instead of emitting the full array.
	ellipsisMarker = `"activities": [...]`
)

// ErrGenerationFailed is the user-visible generation failure. Regeneration is
// the recovery action offered for it.
var ErrGenerationFailed = errors.New("failed to generate schedule, try again")

// GenerationError carries the upstream status and body of a failed completion
// request.
type GenerationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("schedule generation failed (status %d): %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("schedule generation failed: %v", e.Err)
	}
	return "schedule generation failed"
}

func (e *GenerationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrGenerationFailed
}

// isTruncated reports whether an unparseable completion looks like truncated
// or shorthand output, which callers recover from with the fallback schedule.
func isTruncated(content string) bool {
	return strings.Contains(content, ellipsisMarker) || len(content) > maxResponseLength
}
