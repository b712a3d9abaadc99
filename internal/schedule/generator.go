package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/mytrainer/mytrainer-api/internal/logger"
	"github.com/mytrainer/mytrainer-api/internal/models"
)

const (
	// DefaultModel is the default completion model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default completion API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for completion calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// Generator produces weekly schedules. With an API key configured it asks the
// completion endpoint and repairs the result; without one it runs in
// deterministic fallback mode.
type Generator struct {
	client    openai.Client
	model     string
	hasKey    bool
	fallback  *FallbackGenerator
	logger    *zap.Logger
	debugMode bool
}

// NewGenerator creates a schedule generator. An empty apiKey selects fallback
// mode, which is a supported configuration rather than an error.
func NewGenerator(apiKey, baseURL, model string, log *zap.Logger, debugMode bool) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &Generator{
		client:    client,
		model:     model,
		hasKey:    apiKey != "",
		fallback:  NewFallbackGenerator(),
		logger:    log,
		debugMode: debugMode,
	}
}

// FallbackMode reports whether the generator runs without an API credential.
func (g *Generator) FallbackMode() bool {
	return !g.hasKey
}

// Generate returns a validated weekly schedule for the profile. The returned
// RepairReport is nil when no completion response was repaired (fallback and
// degraded paths included).
func (g *Generator) Generate(ctx context.Context, profile *models.UserProfile) (*models.WeeklySchedule, *RepairReport, error) {
	if !g.hasKey {
		if g.logger != nil {
			g.logger.Info("schedule_fallback_mode", zap.String("user_id", profile.ID.String()))
		}
		return g.fallback.Generate(profile), nil, nil
	}

	content, err := g.requestCompletion(ctx, profile)
	if err != nil {
		genErr := &GenerationError{Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.StatusCode
			genErr.Body = apiErr.RawJSON()
		}
		return nil, nil, genErr
	}

	var parsed rawSchedule
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		if isTruncated(content) {
			if g.logger != nil {
				g.logger.Warn("schedule_response_truncated",
					zap.String("user_id", profile.ID.String()),
					zap.Int("response_length", len(content)),
				)
			}
			return g.fallback.Generate(profile), nil, nil
		}
		if g.logger != nil {
			g.logger.Warn("schedule_parse_failed",
				zap.String("user_id", profile.ID.String()),
				zap.String("parse_error", logger.SanitizeError(err)),
			)
		}
		return g.degradedSchedule(profile), nil, nil
	}

	repaired, report := Repair(&parsed, profile)
	return repaired, report, nil
}

// requestCompletion sends a single synchronous completion request and returns
// the first choice's message content.
func (g *Generator) requestCompletion(ctx context.Context, profile *models.UserProfile) (string, error) {
	prompt := buildSchedulePrompt(profile)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		MaxTokens:   openai.Int(4000),
		Temperature: openai.Float(0.7),
	}

	if g.logger != nil && g.debugMode {
		g.logger.Debug("llm_api_request",
			zap.String("operation", "generate_schedule"),
			zap.String("model", g.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", logger.SanitizeDebugContent(prompt)),
			zap.String("user_id", profile.ID.String()),
		)
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if g.logger != nil && g.debugMode {
			g.logger.Debug("llm_api_error",
				zap.String("operation", "generate_schedule"),
				zap.String("model", g.model),
				zap.Error(err),
				zap.String("user_id", profile.ID.String()),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fmt.Errorf("failed to generate schedule: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s", ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if g.logger != nil && g.debugMode {
		g.logger.Debug("llm_api_response",
			zap.String("operation", "generate_schedule"),
			zap.String("model", g.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", logger.SanitizeDebugContent(content)),
			zap.String("user_id", profile.ID.String()),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// degradedSchedule is the soft-degradation result for an unparseable,
// non-truncated completion: a single Monday placeholder with every other day
// empty, so the user sees something and can regenerate.
func (g *Generator) degradedSchedule(profile *models.UserProfile) *models.WeeklySchedule {
	result := models.NewWeeklySchedule()
	for _, day := range models.AllWeekdays() {
		result.Days[day] = models.DaySchedule{Activities: []models.Activity{}}
	}
	result.Days[models.Monday] = models.DaySchedule{
		Activities: []models.Activity{{
			Time:        profile.StartTime + "-" + profile.EndTime,
			Activity:    "Schedule Generation",
			Description: "Your personalized schedule is being generated. Please try again if this persists.",
			Tips:        "The AI is working on creating your detailed schedule",
		}},
	}
	result.Summary = "Schedule generated successfully"
	result.MotivationTips = []string{
		"Stay consistent with your routine",
		"Track your progress",
		"Celebrate small wins",
	}
	return result
}

// buildSchedulePrompt embeds the profile fields and the structural
// requirements the repair step depends on.
func buildSchedulePrompt(profile *models.UserProfile) string {
	return fmt.Sprintf(`Create a DETAILED hourly weekly schedule based on the following user information:

Goals: %s
Work Days: %s
Daily Start Time: %s
Daily End Time: %s
Preferences: %s

IMPORTANT REQUIREMENTS:
1. For non-work days, do not include any activities and just have a rest day.
2. Create a COMPLETE hourly schedule that covers EVERY HOUR from %s to %s
3. Each hour must have a specific activity/task assigned - no empty hours
4. Include exactly 3 breaks per day (morning, afternoon, and evening)
5. Make the schedule PACKED with productive activities
6. Be extremely specific about what the user should be doing each hour
7. Consider the user's goals and create activities that directly contribute to achieving them

Format the response as a structured JSON object with this exact structure:
{
  "schedule": {
    "monday": {
      "activities": [
        {
          "time": "08:00-09:00",
          "activity": "Activity Name",
          "description": "Activity description",
          "tips": "Helpful tip"
        }
      ]
    },
    "tuesday": { "activities": [...] },
    "wednesday": { "activities": [...] },
    "thursday": { "activities": [...] },
    "friday": { "activities": [...] },
    "saturday": { "activities": [...] },
    "sunday": { "activities": [...] }
  },
  "summary": "Brief summary of the weekly plan",
  "motivation_tips": ["Tip 1", "Tip 2", "Tip 3"]
}

CRITICAL:
1. Ensure every hour from %s to %s is filled with a specific activity. The schedule must be comprehensive and actionable.
2. DO NOT use "activities": [...] or any shorthand notation. Provide the complete array of activities for each day.
3. Each day must have a full array of activities covering every hour from start to end time.`,
		profile.Goal,
		strings.Join(profile.WorkDays, ", "),
		profile.StartTime,
		profile.EndTime,
		profile.Preferences,
		profile.StartTime,
		profile.EndTime,
		profile.StartTime,
		profile.EndTime,
	)
}
