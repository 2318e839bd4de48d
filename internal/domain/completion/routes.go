package completion

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PageRoutes is mounted at /s. submitLimit guards the POST and may be nil.
func (h *Handler) PageRoutes(submitLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{qrKey}", h.Page)
	r.Get("/{qrKey}/complete", h.Complete)
	r.Group(func(r chi.Router) {
		if submitLimit != nil {
			r.Use(submitLimit)
		}
		r.Post("/{qrKey}", h.Submit)
	})

	return r
}

// APIRoutes is mounted at /api/v1/public/s.
func (h *Handler) APIRoutes(submitLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{qrKey}", h.GetSurvey)
	r.Group(func(r chi.Router) {
		if submitLimit != nil {
			r.Use(submitLimit)
		}
		r.Post("/{qrKey}/responses", h.SubmitResponses)
	})

	return r
}
