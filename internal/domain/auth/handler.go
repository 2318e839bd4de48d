package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/password"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
	"github.com/qrsurvey/qrs-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AdminLogin handles POST /api/admin/login
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	session, err := h.service.AdminLogin(r.Context(), req)
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}
	response.OK(w, session)
}

// StoreLogin handles POST /api/v1/store/login
func (h *Handler) StoreLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	session, err := h.service.StoreLogin(r.Context(), req)
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}
	response.OK(w, session)
}

// Logout handles POST /logout on both surfaces
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetSession(r.Context())); err != nil {
		log.Warn().Err(err).Msg("token revocation failed")
	}
	response.Done(w)
}

// Me handles GET /me on both surfaces
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	u, err := h.service.GetUser(r.Context(), session.UserID)
	if err != nil {
		h.writeError(w, r, "auth.me", err)
		return
	}
	response.OK(w, UserResponseFromEntity(u))
}

// CreateUser handles POST /api/admin/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "auth.create_user", err)
		return
	}
	response.Created(w, UserResponseFromEntity(u))
}

// GetUser handles GET /api/admin/users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "auth.get_user", err)
		return
	}
	response.OK(w, UserResponseFromEntity(u))
}

// UpdateEmail handles PATCH /api/admin/users/{userID}/email
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, err := h.service.UpdateEmail(r.Context(), id, req.Email)
	if err != nil {
		h.writeError(w, r, "auth.update_email", err)
		return
	}
	response.OK(w, UserResponseFromEntity(u))
}

// UpdatePassword handles PATCH /api/admin/users/{userID}/password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), id, req.Password); err != nil {
		h.writeError(w, r, "auth.update_password", err)
		return
	}
	response.Done(w)
}

// UpdateMetadata handles PATCH /api/admin/users/{userID}/metadata
func (h *Handler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req UpdateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	u, err := h.service.UpdateMetadata(r.Context(), id, req.Metadata)
	if err != nil {
		h.writeError(w, r, "auth.update_metadata", err)
		return
	}
	response.OK(w, UserResponseFromEntity(u))
}

// ConfirmEmail handles POST /api/admin/users/{userID}/confirm-email
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	u, err := h.service.ConfirmEmail(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "auth.confirm_email", err)
		return
	}
	response.OK(w, UserResponseFromEntity(u))
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (*LoginRequest, bool) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return nil, false
	}
	return &req, true
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, ErrNotSuperAdmin):
		response.Forbidden(w, "Admin access required")
	case errors.Is(err, ErrAdminOnStoreLogin):
		response.Forbidden(w, "Admins must sign in through the admin console")
	case errors.Is(err, ErrNoLinkedCustomer):
		response.Forbidden(w, "No customer linked to this account")
	case errors.Is(err, ErrCustomerInactive):
		response.Forbidden(w, "Your account is not active. Please contact support.")
	default:
		errorhandler.StoreFailure(r.Context(), w, "auth.login", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(w, "Email already registered")
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrCustomerRequired),
		errors.Is(err, ErrInvalidMetadata),
		errors.Is(err, password.ErrTooShort):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
