package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qrsurvey/qrs-api/internal/domain/auth"
	"github.com/qrsurvey/qrs-api/internal/domain/completion"
	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/domain/transaction"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	pkgresponse "github.com/qrsurvey/qrs-api/internal/pkg/response"
)

type middlewareFunc = func(http.Handler) http.Handler

// app holds the wired handlers and middleware the router needs.
type app struct {
	auth         *auth.Handler
	customers    *customer.Handler
	surveys      *survey.Handler
	stores       *store.Handler
	transactions *transaction.Handler
	completion   *completion.Handler

	adminAuth   middlewareFunc
	storeAuth   middlewareFunc
	submitLimit middlewareFunc
	loginLimit  middlewareFunc
	liveFeed    http.HandlerFunc

	allowedOrigins []string
}

func (a *app) router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)

	// WebSocket endpoint (before Compress). Browsers cannot set headers
	// on the upgrade request, so the token may come as a query parameter.
	r.Get("/api/v1/store/ws", func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("token"); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		a.storeAuth(a.liveFeed).ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{
				"status":  "ok",
				"version": "1.0.0",
			})
		})

		// Public survey pages, reached by scanning a QR code.
		r.Mount("/s", a.completion.PageRoutes(a.submitLimit))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CORSHandler(a.allowedOrigins))

			r.Mount("/api/v1/public/s", a.completion.APIRoutes(a.submitLimit))

			r.Route("/api/v1/store", func(r chi.Router) {
				r.With(a.loginLimit).Post("/login", a.auth.StoreLogin)

				r.Group(func(r chi.Router) {
					r.Use(a.storeAuth)
					r.Post("/logout", a.auth.Logout)
					r.Get("/me", a.auth.Me)
					r.Mount("/locations", a.stores.PanelRoutes())
					r.Mount("/surveys", a.surveys.Routes())
					r.Get("/billing", a.transactions.Billing)
					r.Get("/balance", a.transactions.StoreBalance)
				})
			})

			r.Route("/api/admin", func(r chi.Router) {
				r.With(a.loginLimit).Post("/login", a.auth.AdminLogin)

				r.Group(func(r chi.Router) {
					r.Use(a.adminAuth)
					r.Post("/logout", a.auth.Logout)
					r.Get("/me", a.auth.Me)
					r.Mount("/users", a.auth.UserRoutes())
					r.Mount("/customers", a.customers.Routes(customer.Nested{
						Stores:       a.stores.AdminRoutes(),
						Transactions: a.transactions.AdminRoutes(),
						Balance:      a.transactions.Balance,
					}))
				})
			})
		})
	})

	return r
}
