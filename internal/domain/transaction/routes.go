package transaction

import (
	"github.com/go-chi/chi/v5"
)

// AdminRoutes is mounted under /api/admin/customers/{customerID}/transactions.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{transactionID}", h.SetStatus)

	return r
}
