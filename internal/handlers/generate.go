package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/inward-app/inward-backend/internal/database"
	"github.com/inward-app/inward-backend/internal/llm"
	"github.com/inward-app/inward-backend/internal/models"
	"github.com/inward-app/inward-backend/internal/services"
)

type GenerateQuestionsRequest struct {
	Topic string `json:"topic"`
}

type GenerateQuestionsResponse struct {
	Questions []models.Question `json:"questions"`
}

type GenerateSuggestionsRequest struct {
	Topic        string   `json:"topic"`
	Questions    []string `json:"questions"`
	Answers      []string `json:"answers"`
	JournalEntry string   `json:"journalEntry"`
}

type GenerateSuggestionsResponse struct {
	Suggestions []models.Suggestion `json:"suggestions"`
}

type GenerateErrorResponse struct {
	Error string `json:"error"`
}

func writeGenerateError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(GenerateErrorResponse{Error: msg})
}

// GenerateQuestions produces exactly 3 reflective questions for a topic.
// Authentication is optional: with a valid session the caller's most recent
// same-topic entry seeds a follow-up question; without one the prompt is the
// plain topic instruction.
func GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGenerateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	topic := req.Topic
	if topic == "" {
		topic = "General"
	}

	snippet := ""
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		if userID, ok, _ := services.ValidateSession(r.Context(), token); ok {
			snippet = priorAnswerSnippet(r.Context(), userID, topic)
		}
	}

	if llm.Client == nil {
		writeGenerateError(w, http.StatusInternalServerError, "Completion service is not configured")
		return
	}

	questions, err := llm.GenerateQuestions(r.Context(), llm.Client, topic, snippet)
	if err != nil {
		log.Printf("Error generating questions: %v", err)
		writeGenerateError(w, http.StatusInternalServerError, "Failed to generate questions: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerateQuestionsResponse{Questions: questions})
}

// GenerateSuggestions produces 1-3 actionable suggestions from either a
// free-form entry (topic "Custom") or a topic session's question/answer
// pairs. Unparsable model output is an error here, never silently replaced.
func GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req GenerateSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGenerateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var prompt string
	if req.Topic == models.TopicCustom && req.JournalEntry != "" {
		prompt = llm.BuildCustomSuggestionsPrompt(req.JournalEntry)
	} else {
		prompt = llm.BuildTopicSuggestionsPrompt(req.Questions, req.Answers)
	}

	if llm.Client == nil {
		writeGenerateError(w, http.StatusInternalServerError, "Completion service is not configured")
		return
	}

	suggestions, err := llm.GenerateSuggestions(r.Context(), llm.Client, prompt)
	if err != nil {
		log.Printf("Error generating suggestions: %v", err)
		if err == llm.ErrUnparsableSuggestions {
			writeGenerateError(w, http.StatusInternalServerError, "Failed to parse AI response")
			return
		}
		writeGenerateError(w, http.StatusInternalServerError, "Failed to generate suggestions: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GenerateSuggestionsResponse{Suggestions: suggestions})
}

// priorAnswerSnippet loads the caller's most recent entry for the same topic
// and reduces its answers to the snippet embedded into the prompt. Lookup
// failures are treated as "no prior entry".
func priorAnswerSnippet(ctx context.Context, userID uuid.UUID, topic string) string {
	var answers []string
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT answers FROM journals
		WHERE user_id = $1 AND topic = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, topic).Scan(pq.Array(&answers))
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("prior entry lookup failed: %v", err)
		}
		return ""
	}
	return llm.SnippetFromAnswers(answers)
}
