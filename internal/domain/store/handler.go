package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
	"github.com/qrsurvey/qrs-api/internal/pkg/validator"
)

// Handler handles store location requests from admins and the store panel
type Handler struct {
	service       *Service
	publicBaseURL string
}

// NewHandler creates store handler. publicBaseURL prefixes the survey
// link encoded in each QR code.
func NewHandler(service *Service, publicBaseURL string) *Handler {
	return &Handler{service: service, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// AdminList handles GET /api/admin/customers/{customerID}/stores
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}
	h.list(w, r, customerID)
}

// AdminCreate handles POST /api/admin/customers/{customerID}/stores
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}

	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	st, err := h.service.Create(r.Context(), customerID, &req)
	if err != nil {
		h.writeError(w, r, "stores.create", err)
		return
	}
	response.Created(w, StoreResponseFromEntity(st, h.publicBaseURL))
}

// AdminGet handles GET /api/admin/customers/{customerID}/stores/{storeID}
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}
	h.get(w, r, customerID)
}

// AdminUpdate handles PATCH /api/admin/customers/{customerID}/stores/{storeID}
func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}
	storeID, ok := uuidParam(w, r, "storeID")
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	st, err := h.service.Update(r.Context(), customerID, storeID, &req)
	if err != nil {
		h.writeError(w, r, "stores.update", err)
		return
	}
	response.OK(w, StoreResponseFromEntity(st, h.publicBaseURL))
}

// AdminUploadLogo handles POST /api/admin/customers/{customerID}/stores/{storeID}/logo
func (h *Handler) AdminUploadLogo(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}
	h.uploadLogo(w, r, customerID)
}

// List handles GET /api/v1/store/locations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.GetCustomerID(r.Context()))
}

// Get handles GET /api/v1/store/locations/{storeID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, middleware.GetCustomerID(r.Context()))
}

// AssignSurvey handles PUT /api/v1/store/locations/{storeID}/survey
func (h *Handler) AssignSurvey(w http.ResponseWriter, r *http.Request) {
	storeID, ok := uuidParam(w, r, "storeID")
	if !ok {
		return
	}

	var req AssignSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	var surveyID *uuid.UUID
	if req.SurveyID != nil && *req.SurveyID != "" {
		id := uuid.MustParse(*req.SurveyID)
		surveyID = &id
	}

	st, err := h.service.AssignSurvey(r.Context(), middleware.GetCustomerID(r.Context()), storeID, surveyID)
	if err != nil {
		h.writeError(w, r, "stores.assign_survey", err)
		return
	}
	response.OK(w, StoreResponseFromEntity(st, h.publicBaseURL))
}

// SurveyCandidates handles GET /api/v1/store/locations/{storeID}/survey-candidates
func (h *Handler) SurveyCandidates(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	storeID, ok := uuidParam(w, r, "storeID")
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), customerID, storeID); err != nil {
		h.writeError(w, r, "stores.get", err)
		return
	}

	items, err := h.service.SurveyCandidates(r.Context(), customerID)
	if err != nil {
		errorhandler.StoreFailure(r.Context(), w, "stores.survey_candidates", err)
		return
	}
	response.OK(w, lo.Map(items, func(s *survey.Survey, _ int) survey.SurveyResponse {
		return survey.SurveyResponseFromEntity(s)
	}))
}

// UploadLogo handles POST /api/v1/store/locations/{storeID}/logo
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadLogo(w, r, middleware.GetCustomerID(r.Context()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, customerID uuid.UUID) {
	items, err := h.service.List(r.Context(), customerID)
	if err != nil {
		errorhandler.StoreFailure(r.Context(), w, "stores.list", err)
		return
	}
	response.OK(w, lo.Map(items, func(s *Store, _ int) StoreResponse {
		return StoreResponseFromEntity(s, h.publicBaseURL)
	}))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, customerID uuid.UUID) {
	storeID, ok := uuidParam(w, r, "storeID")
	if !ok {
		return
	}

	st, err := h.service.Get(r.Context(), customerID, storeID)
	if err != nil {
		h.writeError(w, r, "stores.get", err)
		return
	}
	response.OK(w, StoreResponseFromEntity(st, h.publicBaseURL))
}

func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request, customerID uuid.UUID) {
	storeID, ok := uuidParam(w, r, "storeID")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("logo")
	if err != nil {
		response.BadRequest(w, "Missing logo file")
		return
	}
	defer file.Close()

	st, err := h.service.UploadLogo(r.Context(), customerID, storeID, file)
	if err != nil {
		h.writeError(w, r, "stores.upload_logo", err)
		return
	}
	response.OK(w, StoreResponseFromEntity(st, h.publicBaseURL))
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrStoreNotFound):
		response.NotFound(w, "Store not found")
	case errors.Is(err, ErrCustomerNotFound):
		response.NotFound(w, "Customer not found")
	case errors.Is(err, ErrQRKeyConflict):
		response.Error(w, http.StatusConflict, "QR_KEY_CONFLICT", "Could not allocate a unique QR key, please retry")
	case errors.Is(err, ErrSurveyNotAvailable):
		response.Error(w, http.StatusUnprocessableEntity, "SURVEY_NOT_AVAILABLE", "Choose an active survey of this account")
	case errors.Is(err, ErrInvalidLogo):
		response.BadRequest(w, ErrInvalidLogo.Error())
	case errors.Is(err, ErrLogoUploadDisabled):
		response.Error(w, http.StatusServiceUnavailable, "UPLOADS_DISABLED", "Logo uploads are not configured")
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
