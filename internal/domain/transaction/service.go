package transaction

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/pkg/realtime"
)

// CustomerLookup is the part of the customer service transactions depend on.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// StoreLookup returns a store owned by the given customer, or
// store.ErrStoreNotFound.
type StoreLookup interface {
	Get(ctx context.Context, customerID, id uuid.UUID) (*store.Store, error)
}

// Publisher delivers live events to a customer's dashboards.
type Publisher interface {
	Publish(event realtime.Event)
}

// Service handles transactions and derived balances
type Service struct {
	repo      Repository
	customers CustomerLookup
	stores    StoreLookup
	events    Publisher
}

// NewService creates transaction service. events may be nil.
func NewService(repo Repository, customers CustomerLookup, stores StoreLookup, events Publisher) *Service {
	return &Service{repo: repo, customers: customers, stores: stores, events: events}
}

func (s *Service) List(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error) {
	if err := s.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// Add records an admin-entered transaction, active immediately.
func (s *Service) Add(ctx context.Context, customerID uuid.UUID, req *CreateTransactionRequest) (*Transaction, error) {
	if err := s.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, ErrInvalidAmount
	}

	t := &Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		Type:       Type(req.Type),
		Medium:     req.Medium,
		Details:    nullString(req.Details),
		Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
		Amount:     amount.Round(2),
		Status:     status.Active,
		CreatedAt:  time.Now(),
	}
	if req.StoreID != "" {
		id, err := s.ownedStore(ctx, customerID, req.StoreID)
		if err != nil {
			return nil, err
		}
		t.StoreID = uuid.NullUUID{UUID: id, Valid: true}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	log.Info().
		Str("customer_id", customerID.String()).
		Str("transaction_id", t.ID.String()).
		Str("amount", t.Amount.String()).
		Int("type", int(t.Type)).
		Msg("transaction added")

	s.publishBalance(ctx, customerID)
	return t, nil
}

// RecordCompletion debits one survey completion from the customer.
func (s *Service) RecordCompletion(ctx context.Context, customerID, storeID uuid.UUID, medium string, at time.Time) (*Transaction, error) {
	t := &Transaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		StoreID:    uuid.NullUUID{UUID: storeID, Valid: true},
		Type:       TypeSurveyCompletion,
		Medium:     medium,
		Details:    sql.NullString{String: "Survey completion", Valid: true},
		Currency:   DefaultCurrency,
		Amount:     CompletionAmount,
		Status:     status.Active,
		CreatedAt:  at,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetStatus moves a transaction between active, on hold and deleted,
// which adds it to or removes it from the balance.
func (s *Service) SetStatus(ctx context.Context, customerID, id uuid.UUID, st status.Status) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CustomerID != customerID {
		return nil, ErrTransactionNotFound
	}

	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	t.Status = st

	s.publishBalance(ctx, customerID)
	return t, nil
}

// Balance is the sum of the customer's active transactions.
func (s *Service) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.Balance(ctx, customerID)
}

// PublishBalance pushes the current balance to the customer's dashboards.
func (s *Service) PublishBalance(ctx context.Context, customerID uuid.UUID) {
	s.publishBalance(ctx, customerID)
}

func (s *Service) publishBalance(ctx context.Context, customerID uuid.UUID) {
	if s.events == nil {
		return
	}
	balance, err := s.repo.Balance(ctx, customerID)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", customerID.String()).Msg("balance for live update")
		return
	}
	s.events.Publish(realtime.Event{
		Type:       realtime.EventBalanceChanged,
		CustomerID: customerID,
		Data:       BalanceResponse{CustomerID: customerID, Balance: balance},
	})
}

func (s *Service) ensureCustomer(ctx context.Context, customerID uuid.UUID) error {
	if s.customers == nil {
		return nil
	}
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	if c == nil {
		return ErrCustomerNotFound
	}
	return nil
}

func (s *Service) ownedStore(ctx context.Context, customerID uuid.UUID, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrStoreNotOwned
	}
	if s.stores == nil {
		return id, nil
	}
	if _, err := s.stores.Get(ctx, customerID, id); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return uuid.Nil, ErrStoreNotOwned
		}
		return uuid.Nil, err
	}
	return id, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
