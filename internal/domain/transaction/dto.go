package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest for POST /api/admin/customers/{customerID}/transactions.
// Currency is upper-cased before validation; amount is a decimal string.
type CreateTransactionRequest struct {
	Type     int    `json:"transaction_type" validate:"required,txtype"`
	Medium   string `json:"medium" validate:"required,oneof=stripe web mobile pos other"`
	Details  string `json:"details" validate:"max=500"`
	Currency string `json:"currency" validate:"required,currency"`
	Amount   string `json:"amount" validate:"required"`
	StoreID  string `json:"store_id" validate:"omitempty,uuid"`
}

// SetStatusRequest for PATCH …/transactions/{transactionID}
type SetStatusRequest struct {
	Status *int `json:"status" validate:"required,status"`
}

type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	StoreID     *uuid.UUID      `json:"store_id,omitempty"`
	Type        int             `json:"transaction_type"`
	TypeLabel   string          `json:"transaction_type_label"`
	Medium      string          `json:"medium"`
	Details     string          `json:"details,omitempty"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Status      int             `json:"status"`
	StatusLabel string          `json:"status_label"`
	CreatedAt   time.Time       `json:"created_at"`
}

func TransactionResponseFromEntity(t *Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		CustomerID:  t.CustomerID,
		Type:        int(t.Type),
		TypeLabel:   t.Type.Label(),
		Medium:      t.Medium,
		Details:     t.Details.String,
		Currency:    t.Currency,
		Amount:      t.Amount,
		Status:      int(t.Status),
		StatusLabel: t.Status.Label(false),
		CreatedAt:   t.CreatedAt,
	}
	if t.StoreID.Valid {
		id := t.StoreID.UUID
		resp.StoreID = &id
	}
	return resp
}

type BalanceResponse struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}
