package store

import (
	"github.com/go-chi/chi/v5"
)

// AdminRoutes is mounted under /api/admin/customers/{customerID}/stores.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.AdminList)
	r.Post("/", h.AdminCreate)
	r.Get("/{storeID}", h.AdminGet)
	r.Patch("/{storeID}", h.AdminUpdate)
	r.Post("/{storeID}/logo", h.AdminUploadLogo)

	return r
}

// PanelRoutes is mounted under /api/v1/store/locations. Callers apply store auth.
func (h *Handler) PanelRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Route("/{storeID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/survey", h.AssignSurvey)
		r.Get("/survey-candidates", h.SurveyCandidates)
		r.Post("/logo", h.UploadLogo)
	})

	return r
}
