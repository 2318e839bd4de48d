package survey

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the store panel survey router. Callers apply store auth.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListSurveys)
	r.Post("/", h.CreateSurvey)

	r.Route("/{surveyID}", func(r chi.Router) {
		r.Get("/", h.GetSurvey)
		r.Patch("/", h.UpdateSurvey)

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", h.ListQuestions)
			r.Post("/", h.CreateQuestion)

			r.Route("/{questionID}", func(r chi.Router) {
				r.Get("/", h.GetQuestion)
				r.Patch("/", h.UpdateQuestion)
				r.Post("/move", h.MoveQuestion)

				r.Route("/options", func(r chi.Router) {
					r.Get("/", h.ListOptions)
					r.Post("/", h.CreateOption)
					r.Get("/{optionID}", h.GetOption)
					r.Patch("/{optionID}", h.UpdateOption)
					r.Post("/{optionID}/move", h.MoveOption)
				})
			})
		})
	})

	return r
}
