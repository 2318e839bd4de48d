package survey

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrsurvey/qrs-api/internal/domain/rank"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
	"github.com/qrsurvey/qrs-api/internal/pkg/validator"
)

// Handler handles store panel survey authoring
type Handler struct {
	service *Service
}

// NewHandler creates survey handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListSurveys handles GET /api/v1/store/surveys
func (h *Handler) ListSurveys(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListSurveys(r.Context(), middleware.GetCustomerID(r.Context()))
	if err != nil {
		errorhandler.StoreFailure(r.Context(), w, "surveys.list", err)
		return
	}
	response.OK(w, lo.Map(items, func(s *Survey, _ int) SurveyResponse { return SurveyResponseFromEntity(s) }))
}

// CreateSurvey handles POST /api/v1/store/surveys
func (h *Handler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req CreateSurveyRequest
	if !decode(w, r, &req) {
		return
	}

	sv, err := h.service.CreateSurvey(r.Context(), middleware.GetCustomerID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "surveys.create", err)
		return
	}
	response.Created(w, SurveyResponseFromEntity(sv))
}

// GetSurvey handles GET /api/v1/store/surveys/{surveyID}
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID")
	if !ok {
		return
	}

	sv, err := h.service.GetSurvey(r.Context(), middleware.GetCustomerID(r.Context()), ids[0])
	if err != nil {
		h.writeError(w, r, "surveys.get", err)
		return
	}
	response.OK(w, SurveyResponseFromEntity(sv))
}

// UpdateSurvey handles PATCH /api/v1/store/surveys/{surveyID}
func (h *Handler) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID")
	if !ok {
		return
	}
	var req UpdateSurveyRequest
	if !decode(w, r, &req) {
		return
	}

	sv, err := h.service.UpdateSurvey(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], &req)
	if err != nil {
		h.writeError(w, r, "surveys.update", err)
		return
	}
	response.OK(w, SurveyResponseFromEntity(sv))
}

// ListQuestions handles GET /api/v1/store/surveys/{surveyID}/questions
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID")
	if !ok {
		return
	}

	items, err := h.service.ListQuestions(r.Context(), middleware.GetCustomerID(r.Context()), ids[0])
	if err != nil {
		h.writeError(w, r, "questions.list", err)
		return
	}
	response.OK(w, lo.Map(items, func(q *Question, _ int) QuestionResponse { return QuestionResponseFromEntity(q) }))
}

// CreateQuestion handles POST /api/v1/store/surveys/{surveyID}/questions
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID")
	if !ok {
		return
	}
	var req CreateQuestionRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.service.CreateQuestion(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], &req)
	if err != nil {
		h.writeError(w, r, "questions.create", err)
		return
	}
	response.Created(w, QuestionResponseFromEntity(q))
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID")
	if !ok {
		return
	}

	q, err := h.service.GetQuestion(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1])
	if err != nil {
		h.writeError(w, r, "questions.get", err)
		return
	}
	response.OK(w, QuestionResponseFromEntity(q))
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID")
	if !ok {
		return
	}
	var req UpdateQuestionRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.service.UpdateQuestion(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], &req)
	if err != nil {
		h.writeError(w, r, "questions.update", err)
		return
	}
	response.OK(w, QuestionResponseFromEntity(q))
}

// MoveQuestion handles POST …/questions/{questionID}/move
func (h *Handler) MoveQuestion(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID")
	if !ok {
		return
	}
	var req MoveRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := rank.ParseDirection(req.Direction)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.MoveQuestion(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], dir)
	h.writeOutcome(w, r, "questions.move", outcome, err)
}

func (h *Handler) ListOptions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID")
	if !ok {
		return
	}

	items, err := h.service.ListOptions(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1])
	if err != nil {
		h.writeError(w, r, "options.list", err)
		return
	}
	response.OK(w, lo.Map(items, func(o *Option, _ int) OptionResponse { return OptionResponseFromEntity(o) }))
}

func (h *Handler) CreateOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID")
	if !ok {
		return
	}
	var req CreateOptionRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := h.service.CreateOption(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], &req)
	if err != nil {
		h.writeError(w, r, "options.create", err)
		return
	}
	response.Created(w, OptionResponseFromEntity(o))
}

func (h *Handler) GetOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID", "optionID")
	if !ok {
		return
	}

	o, err := h.service.GetOption(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], ids[2])
	if err != nil {
		h.writeError(w, r, "options.get", err)
		return
	}
	response.OK(w, OptionResponseFromEntity(o))
}

func (h *Handler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID", "optionID")
	if !ok {
		return
	}
	var req UpdateOptionRequest
	if !decode(w, r, &req) {
		return
	}

	o, err := h.service.UpdateOption(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], ids[2], &req)
	if err != nil {
		h.writeError(w, r, "options.update", err)
		return
	}
	response.OK(w, OptionResponseFromEntity(o))
}

func (h *Handler) MoveOption(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "surveyID", "questionID", "optionID")
	if !ok {
		return
	}
	var req MoveRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := rank.ParseDirection(req.Direction)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.MoveOption(r.Context(), middleware.GetCustomerID(r.Context()), ids[0], ids[1], ids[2], dir)
	h.writeOutcome(w, r, "options.move", outcome, err)
}

// writeOutcome reports a move. A failed swap still carries the re-read
// sibling list so the caller can redraw from it.
func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, op string, outcome *rank.Outcome, err error) {
	if err == nil {
		response.OK(w, outcome)
		return
	}
	if errors.Is(err, rank.ErrRankConflict) {
		response.ErrorWithData(w, http.StatusConflict, "RANK_CONFLICT", "Order changed while saving, please retry", outcome)
		return
	}
	if outcome != nil {
		errorhandler.StoreFailure(r.Context(), w, op, err)
		return
	}
	h.writeError(w, r, op, err)
}

func decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

func pathIDs(w http.ResponseWriter, r *http.Request, params ...string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, len(params))
	for i, p := range params {
		id, err := uuid.Parse(chi.URLParam(r, p))
		if err != nil {
			response.BadRequest(w, "Invalid "+p)
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrSurveyNotFound):
		response.NotFound(w, "Survey not found")
	case errors.Is(err, ErrQuestionNotFound):
		response.NotFound(w, "Question not found")
	case errors.Is(err, ErrOptionNotFound), errors.Is(err, rank.ErrItemNotFound):
		response.NotFound(w, "Option not found")
	case errors.Is(err, rank.ErrRankConflict):
		response.Conflict(w, "Order changed while saving, please retry")
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
