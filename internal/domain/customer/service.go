package customer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoginCreator creates the store login bound to a customer.
type LoginCreator interface {
	CreateStoreLogin(ctx context.Context, email, password string, customerID uuid.UUID) (uuid.UUID, error)
}

// Service handles customer business logic
type Service struct {
	repo   Repository
	logins LoginCreator
}

// NewService creates customer service
func NewService(repo Repository, logins LoginCreator) *Service {
	return &Service{repo: repo, logins: logins}
}

func (s *Service) List(ctx context.Context, includeDeleted bool) ([]*ListItem, error) {
	return s.repo.List(ctx, includeDeleted)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

// EnsureActive fails unless the customer exists and may use the store panel.
func (s *Service) EnsureActive(ctx context.Context, id uuid.UUID) error {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.CanLogIn() {
		return ErrCustomerInactive
	}
	return nil
}

// Create inserts the customer and, when req.Login is set, its store login.
// The two writes are separate: a login failure leaves the customer in place
// and is reported as ErrLoginNotCreated.
func (s *Service) Create(ctx context.Context, req *CreateCustomerRequest) (*Customer, error) {
	now := time.Now()
	c := &Customer{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		ContactName:      strings.TrimSpace(req.ContactName),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            nullString(req.Email),
		PaymentMethodKey: nullString(req.PaymentMethodKey),
		Status:           statusOrDefault(req.Status),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().Str("customer_id", c.ID.String()).Str("name", c.Name).Msg("customer created")

	if req.Login == nil || s.logins == nil {
		return c, nil
	}

	userID, err := s.logins.CreateStoreLogin(ctx, req.Login.Email, req.Login.Password, c.ID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", c.ID.String()).Msg("store login creation failed")
		return c, fmt.Errorf("%w: %v", ErrLoginNotCreated, err)
	}
	if err := s.repo.LinkUser(ctx, c.ID, userID); err != nil {
		return c, fmt.Errorf("%w: %v", ErrLoginNotCreated, err)
	}
	c.UserID = uuid.NullUUID{UUID: userID, Valid: true}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateCustomerRequest) (*Customer, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactName != nil {
		c.ContactName = strings.TrimSpace(*req.ContactName)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		c.Email = nullString(*req.Email)
	}
	if req.PaymentMethodKey != nil {
		c.PaymentMethodKey = nullString(*req.PaymentMethodKey)
	}
	if req.UserID != nil {
		if *req.UserID == "" {
			c.UserID = uuid.NullUUID{}
		} else {
			userID, err := uuid.Parse(*req.UserID)
			if err != nil {
				return nil, err
			}
			c.UserID = uuid.NullUUID{UUID: userID, Valid: true}
		}
	}

	previous := c.Status
	if req.Status != nil {
		c.Status = statusOrDefault(req.Status)
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if previous != c.Status {
		log.Info().
			Str("customer_id", c.ID.String()).
			Str("from", previous.Label(true)).
			Str("to", c.Status.Label(true)).
			Msg("customer status changed")
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
