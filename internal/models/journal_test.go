package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeSuggestions_EmptyInputs(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  interface{}
	}{
		{"nil", nil},
		{"empty string", ""},
		{"whitespace string", "   "},
		{"legacy sentinel", "ARRAY[]::text[]"},
		{"malformed json", "{not json"},
		{"json object", `{"title":"x"}`},
		{"json number", "42"},
		{"json string value", `"hello"`},
		{"unrecognized type", map[string]string{"a": "b"}},
		{"nil typed slice", []Suggestion(nil)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeSuggestions(tc.raw)
			if got == nil {
				t.Fatalf("NormalizeSuggestions(%v) = nil, want empty slice", tc.raw)
			}
			if len(got) != 0 {
				t.Fatalf("NormalizeSuggestions(%v) = %v, want empty", tc.raw, got)
			}
		})
	}
}

func TestNormalizeSuggestions_NativeSliceUnchanged(t *testing.T) {
	t.Parallel()

	s := []Suggestion{
		{ID: "1", Title: "Take a walk", Rationale: "Movement helps", Steps: []string{"Put on shoes"}},
		{ID: "2", Title: "Call a friend", Rationale: "Connection", Steps: []string{}},
	}
	got := NormalizeSuggestions(s)
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("normalize changed a native slice: %v", got)
	}
	// Idempotence: a second pass over the result is still the identity.
	if again := NormalizeSuggestions(got); !reflect.DeepEqual(again, got) {
		t.Fatalf("normalize is not idempotent: %v", again)
	}
}

func TestNormalizeSuggestions_JSONStringRoundTrip(t *testing.T) {
	t.Parallel()

	s := []Suggestion{
		{ID: "1", Title: "Sleep earlier", Rationale: "Rest compounds", Steps: []string{"Set an alarm", "Dim lights"}},
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	got := NormalizeSuggestions(string(encoded))
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip mismatch: got %v want %v", got, s)
	}

	// jsonb columns scan as []byte
	got = NormalizeSuggestions(encoded)
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("byte round trip mismatch: got %v want %v", got, s)
	}
}

func TestJournalEntry_Preview(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 150)

	cases := []struct {
		name  string
		entry JournalEntry
		want  string
	}{
		{
			name:  "first non-empty answer wins",
			entry: JournalEntry{Questions: []string{"Q1", "Q2"}, Answers: []string{"", "slept well"}},
			want:  "slept well",
		},
		{
			name:  "falls back to first question",
			entry: JournalEntry{Questions: []string{"", "How was today?"}, Answers: []string{"", ""}},
			want:  "How was today?",
		},
		{
			name:  "custom entry text",
			entry: JournalEntry{JournalEntry: "Today was hard."},
			want:  "Today was hard.",
		},
		{
			name:  "cut at 120",
			entry: JournalEntry{Answers: []string{long}},
			want:  long[:120],
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.entry.Preview(); got != tc.want {
				t.Fatalf("Preview() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestJournalEntry_SearchText(t *testing.T) {
	t.Parallel()

	entry := JournalEntry{
		Questions: []string{"What helped?"},
		Answers:   []string{"A long Walk"},
		Suggestions: []Suggestion{
			{Title: "Evening Routine", Rationale: "Winding down", Steps: []string{"Read a book"}},
		},
	}
	hay := entry.SearchText()
	for _, needle := range []string{"what helped?", "a long walk", "evening routine", "winding down", "read a book"} {
		if !strings.Contains(hay, needle) {
			t.Fatalf("SearchText() = %q, missing %q", hay, needle)
		}
	}
}
