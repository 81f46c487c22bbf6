package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Topics the UI offers for a guided session. TopicCustom selects free-form
// journaling instead of generated questions. Topics are stored as plain text
// on each entry, not as a foreign key.
var Topics = []string{
	"Health",
	"Relationships",
	"Finances",
	"Spirituality/Mind",
	"Career/Work",
	"Impact/Purpose",
}

const TopicCustom = "Custom"

// Question is ephemeral: generated per request, only its text is persisted
// (inside a journal entry's questions list, in generation order).
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Suggestion is one actionable item produced from a journaling session.
// IDs are 1-based ordinals assigned by final array position.
type Suggestion struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Rationale string   `json:"rationale"`
	Steps     []string `json:"steps"`
}

// JournalEntry is the unit of persistence. Topic-driven entries carry
// Questions/Answers (same length, positionally aligned); custom entries carry
// JournalEntry text instead. Created once on save, never updated.
type JournalEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id,omitempty"`
	Topic        string       `json:"topic"`
	Questions    []string     `json:"questions,omitempty"`
	Answers      []string     `json:"answers,omitempty"`
	JournalEntry string       `json:"journal_entry,omitempty"`
	Suggestions  []Suggestion `json:"suggestions"`
	CreatedAt    time.Time    `json:"created_at"`
}

// legacySuggestionSentinel is an artifact of an earlier storage representation
// where suggestions lived in a text[] column.
const legacySuggestionSentinel = "ARRAY[]::text[]"

// NormalizeSuggestions converts whatever shape a stored suggestions field has
// into a renderable slice. Legacy rows may hold a JSON-encoded string, the
// empty string, the old text[] sentinel, or malformed data; every one of those
// degrades to an empty slice rather than an error. Normalizing an
// already-normalized slice returns it unchanged.
func NormalizeSuggestions(raw interface{}) []Suggestion {
	switch v := raw.(type) {
	case nil:
		return []Suggestion{}
	case []Suggestion:
		if v == nil {
			return []Suggestion{}
		}
		return v
	case []byte:
		// jsonb columns scan as []byte
		return NormalizeSuggestions(string(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || trimmed == legacySuggestionSentinel {
			return []Suggestion{}
		}
		// Decode errors are swallowed: anything that is not a JSON array of
		// suggestion-shaped objects comes back as an empty slice.
		var out []Suggestion
		if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
			return []Suggestion{}
		}
		if out == nil {
			return []Suggestion{}
		}
		return out
	default:
		// object-shaped or otherwise unrecognized legacy data: best effort, give up
		return []Suggestion{}
	}
}

// SearchText returns the entry's searchable content lowercased: questions,
// answers, the free-form entry text, and suggestion titles/rationales/steps.
func (e *JournalEntry) SearchText() string {
	parts := make([]string, 0, len(e.Questions)+len(e.Answers)+1+len(e.Suggestions)*5)
	parts = append(parts, e.Questions...)
	parts = append(parts, e.Answers...)
	if e.JournalEntry != "" {
		parts = append(parts, e.JournalEntry)
	}
	for _, s := range e.Suggestions {
		parts = append(parts, s.Title, s.Rationale)
		parts = append(parts, s.Steps...)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

/// Preview returns the short line the history list shows for an entry: the
// first non-empty answer, else the first non-empty question, else the start
// of the free-form text, cut at 120 characters.
func (e *JournalEntry) Preview() string {
	var src string
	for _, a := range e.Answers {
		if a != "" {
			src = a
			break
		}
	}
	if src == "" {
		for _, q := range e.Questions {
			if q != "" {
				src = q
				break
			}
		}
	}
	if src == "" {
		src = e.JournalEntry
	}
	runes := []rune(src)
	if len(runes) > 120 {
		return string(runes[:120])
	}
	return src
}
