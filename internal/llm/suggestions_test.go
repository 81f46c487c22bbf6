package llm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/inward-app/inward-backend/internal/models"
)

func TestBuildCustomSuggestionsPrompt(t *testing.T) {
	t.Parallel()

	got := BuildCustomSuggestionsPrompt(`Today was "hard".`)
	if !strings.Contains(got, "EXACTLY 1 practical suggestion") {
		t.Fatalf("custom prompt does not ask for exactly 1: %q", got)
	}
	if !strings.Contains(got, `Entry: "Today was \"hard\"."`) {
		t.Fatalf("entry not embedded as a JSON string: %q", got)
	}
}

func TestBuildTopicSuggestionsPrompt(t *testing.T) {
	t.Parallel()

	got := BuildTopicSuggestionsPrompt([]string{"How did you sleep?"}, []string{"Badly"})
	if !strings.Contains(got, "EXACTLY 3 practical suggestions") {
		t.Fatalf("topic prompt does not ask for exactly 3: %q", got)
	}
	if !strings.Contains(got, `Questions: ["How did you sleep?"]`) {
		t.Fatalf("questions missing: %q", got)
	}
	if !strings.Contains(got, `Answers: ["Badly"]`) {
		t.Fatalf("answers missing: %q", got)
	}
}

func TestBuildTopicSuggestionsPrompt_NilSlices(t *testing.T) {
	t.Parallel()

	got := BuildTopicSuggestionsPrompt(nil, nil)
	if !strings.Contains(got, "Questions: []") || !strings.Contains(got, "Answers: []") {
		t.Fatalf("nil slices should serialize as empty arrays: %q", got)
	}
}

func TestParseSuggestions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want []models.Suggestion
	}{
		{
			name: "bare array",
			text: `[{"title":"Walk","rationale":"Movement","steps":["Shoes on","Go out"]}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "Walk", Rationale: "Movement", Steps: []string{"Shoes on", "Go out"}},
			},
		},
		{
			name: "wrapped object",
			text: `{"suggestions":[{"title":"Walk","rationale":"Movement","steps":[]}]}`,
			want: []models.Suggestion{
				{ID: "1", Title: "Walk", Rationale: "Movement", Steps: []string{}},
			},
		},
		{
			name: "five items truncated to three with positional ids",
			text: `[{"title":"A"},{"title":"B"},{"title":"C"},{"title":"D"},{"title":"E"}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "A", Steps: []string{}},
				{ID: "2", Title: "B", Steps: []string{}},
				{ID: "3", Title: "C", Steps: []string{}},
			},
		},
		{
			name: "steps capped at three",
			text: `[{"title":"A","steps":["1","2","3","4","5"]}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "A", Steps: []string{"1", "2", "3"}},
			},
		},
		{
			name: "missing or non-array steps become empty",
			text: `[{"title":"A","steps":"do it"},{"title":"B"}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "A", Steps: []string{}},
				{ID: "2", Title: "B", Steps: []string{}},
			},
		},
		{
			name: "model-assigned ids are ignored",
			text: `[{"id":"99","title":"A"},{"id":"x","title":"B"}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "A", Steps: []string{}},
				{ID: "2", Title: "B", Steps: []string{}},
			},
		},
		{
			name: "non-string fields coerced to JSON form",
			text: `[{"title":7,"rationale":true,"steps":[1,2]}]`,
			want: []models.Suggestion{
				{ID: "1", Title: "7", Rationale: "true", Steps: []string{"1", "2"}},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSuggestions(tc.text)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSuggestions(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestParseSuggestions_Unparsable(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"Sure, here are some ideas:",
		`"just a string"`,
		"42",
	} {
		if _, err := ParseSuggestions(text); !errors.Is(err, ErrUnparsableSuggestions) {
			t.Fatalf("ParseSuggestions(%q) err = %v, want ErrUnparsableSuggestions", text, err)
		}
	}
}

func TestGenerateSuggestions(t *testing.T) {
	t.Parallel()

	t.Run("parse failure propagates", func(t *testing.T) {
		t.Parallel()
		stub := &stubCompleter{text: "not json"}
		if _, err := GenerateSuggestions(context.Background(), stub, "prompt"); !errors.Is(err, ErrUnparsableSuggestions) {
			t.Fatalf("err = %v, want ErrUnparsableSuggestions", err)
		}
	})

	t.Run("completion error propagates", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("rate limited")
		stub := &stubCompleter{err: wantErr}
		if _, err := GenerateSuggestions(context.Background(), stub, "prompt"); !errors.Is(err, wantErr) {
			t.Fatalf("err = %v, want %v", err, wantErr)
		}
	})

	t.Run("uses the suggestion system prompt", func(t *testing.T) {
		t.Parallel()
		stub := &stubCompleter{text: `[{"title":"A"}]`}
		got, err := GenerateSuggestions(context.Background(), stub, "custom prompt")
		if err != nil {
			t.Fatal(err)
		}
		if stub.gotSystem != SuggestionSystemPrompt || stub.gotUser != "custom prompt" {
			t.Fatalf("completer called with system=%q user=%q", stub.gotSystem, stub.gotUser)
		}
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("got %v", got)
		}
	})
}
