package auth

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LoginRequest for POST /api/admin/login and /api/v1/store/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest for POST /api/admin/users
type CreateUserRequest struct {
	Email        string  `json:"email" validate:"required"`
	Password     string  `json:"password" validate:"required"`
	CustomerID   *string `json:"customer_id" validate:"omitempty,uuid"`
	IsSuperAdmin bool    `json:"is_super_admin"`
}

type UpdateEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// UpdateMetadataRequest carries metadata as raw JSON text, the way the
// admin console edits it.
type UpdateMetadataRequest struct {
	Metadata string `json:"metadata"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID               uuid.UUID       `json:"id"`
	Email            string          `json:"email"`
	EmailConfirmedAt *time.Time      `json:"email_confirmed_at"`
	Metadata         json.RawMessage `json:"metadata"`
	IsSuperAdmin     bool            `json:"is_super_admin"`
	CustomerID       *uuid.UUID      `json:"customer_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func UserResponseFromEntity(u *User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Metadata:     json.RawMessage(u.Metadata),
		IsSuperAdmin: u.IsSuperAdmin,
		CreatedAt:    u.CreatedAt,
	}
	if len(resp.Metadata) == 0 {
		resp.Metadata = json.RawMessage(`{}`)
	}
	if u.EmailConfirmedAt.Valid {
		t := u.EmailConfirmedAt.Time
		resp.EmailConfirmedAt = &t
	}
	if id, ok := u.LinkedCustomerID(); ok {
		resp.CustomerID = &id
	}
	return resp
}
