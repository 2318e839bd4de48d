package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Nested holds the per-customer routers owned by other domains.
type Nested struct {
	Stores       http.Handler
	Transactions http.Handler
	Balance      http.HandlerFunc
}

// Routes returns the admin customer router. Callers apply admin auth.
func (h *Handler) Routes(nested Nested) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{customerID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)

		if nested.Stores != nil {
			r.Mount("/stores", nested.Stores)
		}
		if nested.Transactions != nil {
			r.Mount("/transactions", nested.Transactions)
		}
		if nested.Balance != nil {
			r.Get("/balance", nested.Balance)
		}
	})

	return r
}
