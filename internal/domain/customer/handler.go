package customer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
	"github.com/qrsurvey/qrs-api/internal/pkg/validator"
)

// Handler handles admin customer requests
type Handler struct {
	service *Service
}

// NewHandler creates customer handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/admin/customers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), r.URL.Query().Get("include_deleted") == "true")
	if err != nil {
		errorhandler.StoreFailure(r.Context(), w, "customers.list", err)
		return
	}
	response.OK(w, listResponse(items))
}

// Create handles POST /api/admin/customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrLoginNotCreated) && c != nil {
			response.ErrorWithData(w, http.StatusConflict, "LOGIN_NOT_CREATED", err.Error(), CustomerResponseFromEntity(c))
			return
		}
		errorhandler.StoreFailure(r.Context(), w, "customers.create", err)
		return
	}

	response.Created(w, CustomerResponseFromEntity(c))
}

// Get handles GET /api/admin/customers/{customerID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "customers.get", err)
		return
	}
	response.OK(w, CustomerResponseFromEntity(c))
}

// Update handles PATCH /api/admin/customers/{customerID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, "customers.update", err)
		return
	}
	response.OK(w, CustomerResponseFromEntity(c))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		response.NotFound(w, "Customer not found")
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
