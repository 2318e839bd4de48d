package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/errorhandler"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
	"github.com/qrsurvey/qrs-api/internal/pkg/validator"
)

// Handler handles transaction and balance requests
type Handler struct {
	service *Service
}

// NewHandler creates transaction handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/admin/customers/{customerID}/transactions
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerParam(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), customerID)
	if err != nil {
		h.writeError(w, r, "transactions.list", err)
		return
	}
	response.OK(w, toResponses(items))
}

// Create handles POST /api/admin/customers/{customerID}/transactions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerParam(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		req.Currency = DefaultCurrency
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t, err := h.service.Add(r.Context(), customerID, &req)
	if err != nil {
		h.writeError(w, r, "transactions.create", err)
		return
	}
	response.Created(w, TransactionResponseFromEntity(t))
}

// SetStatus handles PATCH /api/admin/customers/{customerID}/transactions/{transactionID}
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerParam(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	t, err := h.service.SetStatus(r.Context(), customerID, id, status.Status(*req.Status))
	if err != nil {
		h.writeError(w, r, "transactions.set_status", err)
		return
	}
	response.OK(w, TransactionResponseFromEntity(t))
}

// Balance handles GET /api/admin/customers/{customerID}/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerParam(w, r)
	if !ok {
		return
	}
	h.writeBalance(w, r, customerID)
}

// Billing handles GET /api/v1/store/billing
func (h *Handler) Billing(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), middleware.GetCustomerID(r.Context()))
	if err != nil {
		h.writeError(w, r, "billing.list", err)
		return
	}
	response.OK(w, toResponses(items))
}

// StoreBalance handles GET /api/v1/store/balance
func (h *Handler) StoreBalance(w http.ResponseWriter, r *http.Request) {
	h.writeBalance(w, r, middleware.GetCustomerID(r.Context()))
}

func (h *Handler) writeBalance(w http.ResponseWriter, r *http.Request, customerID uuid.UUID) {
	balance, err := h.service.Balance(r.Context(), customerID)
	if err != nil {
		errorhandler.StoreFailure(r.Context(), w, "balance.get", err)
		return
	}
	response.OK(w, BalanceResponse{CustomerID: customerID, Balance: balance})
}

func customerParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return uuid.Nil, false
	}
	return id, true
}

func toResponses(items []*Transaction) []TransactionResponse {
	return lo.Map(items, func(t *Transaction, _ int) TransactionResponse { return TransactionResponseFromEntity(t) })
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		response.NotFound(w, "Customer not found")
	case errors.Is(err, ErrTransactionNotFound):
		response.NotFound(w, "Transaction not found")
	case errors.Is(err, ErrInvalidAmount):
		response.ValidationError(w, map[string]string{"amount": "Please enter a valid amount"})
	case errors.Is(err, ErrStoreNotOwned):
		response.ValidationError(w, map[string]string{"store_id": "Store not found for this customer"})
	default:
		errorhandler.StoreFailure(r.Context(), w, op, err)
	}
}
