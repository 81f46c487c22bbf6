package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/inward-app/inward-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.GetMe)

	// Generation routes (one completion call each, no persistence)
	r.Post("/api/generate/questions", handlers.GenerateQuestions)
	r.Post("/api/generate/suggestions", handlers.GenerateSuggestions)

	// Journal routes
	r.Post("/api/journals", handlers.CreateJournal)
	r.Get("/api/journals", handlers.GetJournals)
	r.Delete("/api/journals", handlers.DeleteJournal)
}
