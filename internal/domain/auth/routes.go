package auth

import (
	"github.com/go-chi/chi/v5"
)

// UserRoutes returns the admin user management router. Callers apply admin auth.
func (h *Handler) UserRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Patch("/email", h.UpdateEmail)
		r.Patch("/password", h.UpdatePassword)
		r.Patch("/metadata", h.UpdateMetadata)
		r.Post("/confirm-email", h.ConfirmEmail)
	})

	return r
}
