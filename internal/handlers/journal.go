package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/inward-app/inward-backend/internal/database"
	"github.com/inward-app/inward-backend/internal/models"
)

type CreateJournalRequest struct {
	Topic        string              `json:"topic"`
	Questions    []string            `json:"questions"`
	Answers      []string            `json:"answers"`
	JournalEntry string              `json:"journal_entry"`
	Suggestions  []models.Suggestion `json:"suggestions"`
}

type JournalResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

// JournalListItem is one history row: the entry plus the preview line the
// history list renders.
type JournalListItem struct {
	models.JournalEntry
	Preview string `json:"preview"`
}

type ListJournalsResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Entries []JournalListItem `json:"entries"`
	Total   int               `json:"total"`
}

// CreateJournal saves a finished session as an immutable entry. Topic-driven
// sessions carry questions/answers of equal length; custom sessions carry the
// free-form text instead.
func CreateJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.Topic == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Topic is required",
		})
		return
	}

	if req.Topic == models.TopicCustom {
		if strings.TrimSpace(req.JournalEntry) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(JournalResponse{
				Success: false,
				Message: "Journal entry text is required for a custom entry",
			})
			return
		}
	} else {
		if len(req.Questions) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(JournalResponse{
				Success: false,
				Message: "Questions are required",
			})
			return
		}
		if len(req.Answers) != len(req.Questions) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(JournalResponse{
				Success: false,
				Message: "Answers must align with questions",
			})
			return
		}
	}

	suggestions := models.NormalizeSuggestions(req.Suggestions)
	suggestionsJSON, err := json.Marshal(suggestions)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Failed to encode suggestions",
		})
		return
	}

	entryID := uuid.New()
	entry := models.JournalEntry{
		ID:           entryID.String(),
		Topic:        req.Topic,
		Questions:    req.Questions,
		Answers:      req.Answers,
		JournalEntry: req.JournalEntry,
		Suggestions:  suggestions,
	}
	err = database.PostgresDB.QueryRowContext(r.Context(), `
		INSERT INTO journals (id, user_id, topic, questions, answers, journal_entry, suggestions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`, entryID, userID, req.Topic, pq.Array(req.Questions), pq.Array(req.Answers), req.JournalEntry, suggestionsJSON).
		Scan(&entry.CreatedAt)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Failed to save journal entry",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(JournalResponse{
		Success: true,
		Message: "Journal entry saved",
		Entry:   &entry,
	})
}

// GetJournals returns the caller's entries newest first. Supports limit/skip
// paging and an optional q= substring search across questions, answers, the
// free-form text, and normalized suggestions.
func GetJournals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ListJournalsResponse{
			Success: false,
			Message: "Authentication required",
			Entries: []JournalListItem{},
		})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, topic, questions, answers, journal_entry, suggestions, created_at
		FROM journals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ListJournalsResponse{
			Success: false,
			Message: "Failed to load journal entries",
			Entries: []JournalListItem{},
		})
		return
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanJournalRow(rows)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ListJournalsResponse{
				Success: false,
				Message: "Failed to read journal entries",
				Entries: []JournalListItem{},
			})
			return
		}
		if query != "" && !strings.Contains(entry.SearchText(), query) {
			continue
		}
		entries = append(entries, entry)
	}

	total := len(entries)
	if skip > len(entries) {
		skip = len(entries)
	}
	entries = entries[skip:]
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]JournalListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, JournalListItem{JournalEntry: e, Preview: e.Preview()})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListJournalsResponse{
		Success: true,
		Entries: items,
		Total:   total,
	})
}

// DeleteJournal removes one of the caller's entries by id (?id=).
func DeleteJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	entryID, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Invalid entry id",
		})
		return
	}

	res, err := database.PostgresDB.ExecContext(r.Context(), `
		DELETE FROM journals WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Failed to delete journal entry",
		})
		return
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(JournalResponse{
			Success: false,
			Message: "Entry not found",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(JournalResponse{
		Success: true,
		Message: "Entry deleted",
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJournalRow reads one journals row and normalizes the suggestions field,
// whatever shape the stored value has.
func scanJournalRow(row rowScanner) (models.JournalEntry, error) {
	var entry models.JournalEntry
	var entryID uuid.UUID
	var questions, answers []string
	var journalText *string
	var rawSuggestions []byte

	err := row.Scan(&entryID, &entry.Topic, pq.Array(&questions), pq.Array(&answers), &journalText, &rawSuggestions, &entry.CreatedAt)
	if err != nil {
		return models.JournalEntry{}, err
	}

	entry.ID = entryID.String()
	entry.Questions = questions
	entry.Answers = answers
	if journalText != nil {
		entry.JournalEntry = *journalText
	}
	entry.Suggestions = models.NormalizeSuggestions(rawSuggestions)
	return entry, nil
}
