package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/inward-app/inward-backend/internal/models"
)

// SuggestionSystemPrompt pins the model to JSON-only output for suggestion generation.
const SuggestionSystemPrompt = "You are a supportive therapist coach. Always respond with valid JSON only."

// MaxSuggestions caps the returned items in both modes. Custom mode asks the
// model for exactly 1 but the response path stays uniform: truncate to 3,
// nothing stricter.
const MaxSuggestions = 3

const maxSuggestionSteps = 3

// ErrUnparsableSuggestions is returned when the model's response is neither a
// bare array nor an object wrapping one. There is no synthetic fallback for
// suggestions; callers surface this to the client.
var ErrUnparsableSuggestions = errors.New("failed to parse AI response")

// BuildCustomSuggestionsPrompt builds the prompt for a free-form journal
// entry. Requests exactly 1 suggestion.
func BuildCustomSuggestionsPrompt(journalEntry string) string {
	entry, _ := json.Marshal(journalEntry)
	return strings.Join([]string{
		"You are a supportive therapist coach.",
		"Based on the entry, produce EXACTLY 1 practical suggestion as pure JSON array:",
		`[{"title":"...","rationale":"...","steps":["...","...","..."]}]`,
		"Keep items concise; no diagnosis/medical claims.",
		"Entry: " + string(entry),
	}, "\n")
}

// BuildTopicSuggestionsPrompt builds the prompt for a topic session's
// question/answer pairs. Requests exactly 3 suggestions.
func BuildTopicSuggestionsPrompt(questions, answers []string) string {
	if questions == nil {
		questions = []string{}
	}
	if answers == nil {
		answers = []string{}
	}
	qs, _ := json.Marshal(questions)
	as, _ := json.Marshal(answers)
	return strings.Join([]string{
		"You are a supportive therapist coach.",
		"Based on the answers, produce EXACTLY 3 practical suggestions as pure JSON array:",
		`[{"title":"...","rationale":"...","steps":["...","...","..."]}, ...]`,
		"Keep items concise; no diagnosis/medical claims.",
		"Questions: " + string(qs),
		"Answers: " + string(as),
	}, "\n")
}

// ParseSuggestions decodes the model's response into at most MaxSuggestions
// items with ordinal ids assigned by position. Accepted shapes are a bare
// array or an object wrapping one under "suggestions"; anything else is
// ErrUnparsableSuggestions.
func ParseSuggestions(text string) ([]models.Suggestion, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		var wrapped struct {
			Suggestions []json.RawMessage `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, ErrUnparsableSuggestions
		}
		raw = wrapped.Suggestions
	}
	if len(raw) > MaxSuggestions {
		raw = raw[:MaxSuggestions]
	}
	out := make([]models.Suggestion, 0, len(raw))
	for i, r := range raw {
		var obj map[string]interface{}
		if err := json.Unmarshal(r, &obj); err != nil {
			obj = nil
		}
		out = append(out, models.Suggestion{
			ID:        strconv.Itoa(i + 1),
			Title:     coerceString(obj["title"]),
			Rationale: coerceString(obj["rationale"]),
			Steps:     coerceSteps(obj["steps"]),
		})
	}
	return out, nil
}

// GenerateSuggestions completes the given prompt and parses the result.
// A parse failure propagates; it is never papered over with defaults.
func GenerateSuggestions(ctx context.Context, c Completer, prompt string) ([]models.Suggestion, error) {
	text, err := c.Complete(ctx, SuggestionSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return ParseSuggestions(text)
}

// coerceSteps turns a decoded steps value into at most maxSuggestionSteps
// strings. A value that is not a sequence becomes an empty slice.
func coerceSteps(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	if len(items) > maxSuggestionSteps {
		items = items[:maxSuggestionSteps]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, coerceString(item))
	}
	return out
}
