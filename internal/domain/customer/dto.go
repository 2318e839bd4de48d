package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// LoginRequest optionally creates the customer's store login alongside it.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateCustomerRequest for POST /api/admin/customers
type CreateCustomerRequest struct {
	Name             string        `json:"name" validate:"required,max=200"`
	ContactName      string        `json:"contact_name" validate:"required,max=200"`
	Phone            string        `json:"phone" validate:"required,max=50"`
	Email            string        `json:"email" validate:"omitempty,email"`
	PaymentMethodKey string        `json:"stripe_pm_key" validate:"omitempty,max=255"`
	Status           *int          `json:"status" validate:"omitempty,status"`
	Login            *LoginRequest `json:"login"`
}

// UpdateCustomerRequest for PATCH /api/admin/customers/{customerID}.
// Absent fields are left unchanged.
type UpdateCustomerRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	ContactName      *string `json:"contact_name" validate:"omitempty,min=1,max=200"`
	Phone            *string `json:"phone" validate:"omitempty,min=1,max=50"`
	Email            *string `json:"email" validate:"omitempty,email"`
	PaymentMethodKey *string `json:"stripe_pm_key" validate:"omitempty,max=255"`
	Status           *int    `json:"status" validate:"omitempty,status"`
	UserID           *string `json:"user_id" validate:"omitempty,uuid"`
}

type CustomerResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	ContactName      string     `json:"contact_name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email,omitempty"`
	PaymentMethodKey string     `json:"stripe_pm_key,omitempty"`
	Status           int        `json:"status"`
	StatusLabel      string     `json:"status_label"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	StoreCount       *int       `json:"store_count,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func CustomerResponseFromEntity(c *Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:               c.ID,
		Name:             c.Name,
		ContactName:      c.ContactName,
		Phone:            c.Phone,
		Email:            c.Email.String,
		PaymentMethodKey: c.PaymentMethodKey.String,
		Status:           int(c.Status),
		StatusLabel:      c.Status.Label(true),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.UserID.Valid {
		id := c.UserID.UUID
		resp.UserID = &id
	}
	return resp
}

func listResponse(items []*ListItem) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(items))
	for _, it := range items {
		resp := CustomerResponseFromEntity(&it.Customer)
		count := it.StoreCount
		resp.StoreCount = &count
		out = append(out, resp)
	}
	return out
}

func statusOrDefault(v *int) status.Status {
	if v == nil {
		return status.Active
	}
	return status.Status(*v)
}
