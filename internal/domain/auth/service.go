package auth

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/jwt"
	"github.com/qrsurvey/qrs-api/internal/pkg/password"
)

// CustomerLookup is the part of the customer service logins depend on.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// Service handles logins, sessions and admin user management
type Service struct {
	repo        Repository
	customers   CustomerLookup
	jwtService  *jwt.Service
	revocations Revocations
	now         func() time.Time
}

// NewService creates auth service
func NewService(repo Repository, customers CustomerLookup, jwtService *jwt.Service, revocations Revocations) *Service {
	return &Service{
		repo:        repo,
		customers:   customers,
		jwtService:  jwtService,
		revocations: revocations,
		now:         time.Now,
	}
}

// SetCustomers wires the customer lookup after construction; the customer
// service in turn depends on this service to create store logins.
func (s *Service) SetCustomers(customers CustomerLookup) {
	s.customers = customers
}

// AdminLogin authenticates a super admin for the admin console.
func (s *Service) AdminLogin(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	u, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !u.IsSuperAdmin {
		return nil, ErrNotSuperAdmin
	}
	return s.issue(jwt.AudienceAdmin, u, nil)
}

// StoreLogin authenticates a customer's login for the store panel. Super
// admins are turned away, as are logins whose customer is missing or not active.
func (s *Service) StoreLogin(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	u, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if u.IsSuperAdmin {
		return nil, ErrAdminOnStoreLogin
	}

	customerID, ok := u.LinkedCustomerID()
	if !ok {
		return nil, ErrNoLinkedCustomer
	}
	if err := s.CheckCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	return s.issue(jwt.AudienceStore, u, &customerID)
}

// CheckCustomer is the store panel gate, run at login and on every request.
func (s *Service) CheckCustomer(ctx context.Context, customerID uuid.UUID) error {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return ErrNoLinkedCustomer
		}
		return err
	}
	if c == nil {
		return ErrNoLinkedCustomer
	}
	if !c.CanLogIn() {
		return ErrCustomerInactive
	}
	return nil
}

// Logout revokes the session's token until it expires.
func (s *Service) Logout(ctx context.Context, session *middleware.Session) error {
	if session == nil || s.revocations == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, session.TokenID, session.ExpiresAt)
}

func (s *Service) authenticate(ctx context.Context, req *LoginRequest) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) issue(audience string, u *User, customerID *uuid.UUID) (*SessionResponse, error) {
	token, claims, err := s.jwtService.Issue(audience, u.ID, customerID, u.IsSuperAdmin)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Str("audience", audience).Msg("session issued")
	return &SessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      UserResponseFromEntity(u),
	}, nil
}

// CreateUser creates a login with its email already confirmed.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	var customerID uuid.NullUUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, ErrCustomerRequired
		}
		customerID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if !req.IsSuperAdmin && !customerID.Valid {
		return nil, ErrCustomerRequired
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	metadata := types.JSONText(`{}`)
	if customerID.Valid {
		metadata, _ = json.Marshal(map[string]string{"customer_id": customerID.UUID.String()})
	}

	now := s.now()
	u := &User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     hash,
		EmailConfirmedAt: sql.NullTime{Time: now, Valid: true},
		Metadata:         metadata,
		IsSuperAdmin:     req.IsSuperAdmin,
		CustomerID:       customerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Bool("super_admin", u.IsSuperAdmin).
		Msg("auth user created")
	return u, nil
}

// CreateStoreLogin creates the login a customer uses for the store panel.
func (s *Service) CreateStoreLogin(ctx context.Context, email, pw string, customerID uuid.UUID) (uuid.UUID, error) {
	id := customerID.String()
	u, err := s.CreateUser(ctx, &CreateUserRequest{Email: email, Password: pw, CustomerID: &id})
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if err := s.repo.UpdateEmail(ctx, id, email); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Service) UpdatePassword(ctx context.Context, id uuid.UUID, pw string) error {
	hash, err := password.Hash(pw)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, id, hash)
}

// UpdateMetadata replaces metadata with raw, which must be a JSON document.
// Blank input clears it to {}.
func (s *Service) UpdateMetadata(ctx context.Context, id uuid.UUID, raw string) (*User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	if !json.Valid([]byte(raw)) {
		return nil, ErrInvalidMetadata
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(raw)); err != nil {
		return nil, ErrInvalidMetadata
	}
	if err := s.repo.UpdateMetadata(ctx, id, types.JSONText(compact.Bytes())); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Service) ConfirmEmail(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := s.repo.ConfirmEmail(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
