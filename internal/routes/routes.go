package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/soullog/internal/handlers"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Screens
	r.Get("/", h.View)
	r.Get("/v/{view}", h.View)

	// Auth forms
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/guest", h.Guest)
	r.Post("/auth/logout", h.Logout)

	// Entries
	r.Post("/entries", h.CreateEntry)
	r.Post("/entries/{id}", h.UpdateEntry)
	r.Post("/entries/{id}/delete", h.DeleteEntry)

	r.Post("/theme", h.Theme)

	// Identity change stream for open pages
	r.Get("/ws/session", h.SessionEvents)
}
