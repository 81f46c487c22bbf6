package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/inward-app/inward-backend/internal/models"
)

// QuestionSystemPrompt pins the model to JSON-only output for question generation.
const QuestionSystemPrompt = "You are a supportive therapist. Always respond with valid JSON only."

// SnippetMaxChars caps the prior-answer excerpt embedded into the prompt.
const SnippetMaxChars = 300

const questionCount = 3

// FallbackQuestions is substituted whenever the model's output cannot be
// parsed or holds zero usable items. Same set for every topic. A completion
// request that failed outright is never masked by this set.
var FallbackQuestions = []string{
	"What emotion feels most present for you right now?",
	"What felt meaningful or difficult in the past day?",
	"What is one small step that could help you today?",
}

// SnippetFromAnswers selects the longest answer (first occurrence wins on
// ties) and truncates it to SnippetMaxChars characters. Returns "" when no
// answer has content.
func SnippetFromAnswers(answers []string) string {
	longest := ""
	for _, a := range answers {
		if utf8.RuneCountInString(a) > utf8.RuneCountInString(longest) {
			longest = a
		}
	}
	runes := []rune(longest)
	if len(runes) > SnippetMaxChars {
		return string(runes[:SnippetMaxChars])
	}
	return longest
}

// BuildQuestionsPrompt assembles the user message for question generation.
// Without a prior snippet the prompt is exactly the base instruction; with
// one, a follow-up clause is appended so exactly 1 of the 3 questions picks
// up the prior theme without quoting it verbatim.
func BuildQuestionsPrompt(topic, snippet string) string {
	base := fmt.Sprintf(`You are a therapist who helps people reflect on %s. Return EXACTLY 3 short, distinct questions as pure JSON array: [{"text":"..."},{"text":"..."},{"text":"..."}]. No extra text.`, topic)
	if snippet == "" {
		return base
	}
	excerpt, _ := json.Marshal(map[string]string{"prior_answer_excerpt": snippet})
	return strings.Join([]string{
		base,
		"",
		"From the 3 questions:",
		"• Exactly 1 must be a gentle follow-up to this prior theme (do NOT quote it verbatim):",
		string(excerpt),
		fmt.Sprintf("• The other 2 should be %s reflective questions.", topic),
	}, "\n")
}

// ParseQuestionTexts decodes the model's response. Accepted shapes are a bare
// array of {text} objects or an object wrapping that array under "questions";
// any other shape yields nil and the caller falls back.
func ParseQuestionTexts(text string) []string {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		var wrapped struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil
		}
		raw = wrapped.Questions
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var obj map[string]interface{}
		if err := json.Unmarshal(r, &obj); err != nil {
			out = append(out, "")
			continue
		}
		out = append(out, coerceString(obj["text"]))
	}
	return out
}

// FinalizeQuestions trims or pads the parsed texts to exactly 3 questions and
// assigns ordinal ids "1".."3" by final position, never by anything the model
// returned. Zero items means the whole fallback set; short outputs are padded
// from it by position.
func FinalizeQuestions(texts []string) []models.Question {
	final := make([]string, 0, questionCount)
	if len(texts) == 0 {
		texts = FallbackQuestions
	}
	for i := 0; i < questionCount; i++ {
		if i < len(texts) {
			final = append(final, texts[i])
		} else {
			final = append(final, FallbackQuestions[i])
		}
	}
	questions := make([]models.Question, 0, questionCount)
	for i, t := range final {
		questions = append(questions, models.Question{ID: strconv.Itoa(i + 1), Text: t})
	}
	return questions
}

// GenerateQuestions runs the full question contract against the completion
// service: build the prompt, complete, parse, fall back if needed, return
// exactly 3 questions. The error path is reserved for completion failures;
// unparsable output is masked by the fallback set instead.
func GenerateQuestions(ctx context.Context, c Completer, topic, snippet string) ([]models.Question, error) {
	text, err := c.Complete(ctx, QuestionSystemPrompt, BuildQuestionsPrompt(topic, snippet))
	if err != nil {
		return nil, err
	}
	return FinalizeQuestions(ParseQuestionTexts(text)), nil
}

// coerceString mirrors the loose coercion the generation contract promises:
// strings pass through, absent values become "", everything else is rendered
// as its JSON form.
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
