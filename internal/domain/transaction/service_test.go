package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/pkg/realtime"
)

type fakeRepo struct {
	txs []*Transaction
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range f.txs {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	for _, t := range f.txs {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, t *Transaction) error {
	cp := *t
	f.txs = append(f.txs, &cp)
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, s status.Status) error {
	for _, t := range f.txs {
		if t.ID == id {
			t.Status = s
			return nil
		}
	}
	return ErrTransactionNotFound
}

func (f *fakeRepo) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	txs, _ := f.ListByCustomer(ctx, customerID)
	return SumBalance(txs), nil
}

type fakeCustomers map[uuid.UUID]bool

func (f fakeCustomers) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	if !f[id] {
		return nil, customer.ErrCustomerNotFound
	}
	return &customer.Customer{ID: id, Status: status.Active}, nil
}

type fakeStores map[uuid.UUID]uuid.UUID

func (f fakeStores) Get(ctx context.Context, customerID, id uuid.UUID) (*store.Store, error) {
	owner, ok := f[id]
	if !ok || owner != customerID {
		return nil, store.ErrStoreNotFound
	}
	return &store.Store{ID: id, CustomerID: owner}, nil
}

type recorder struct {
	events []realtime.Event
}

func (r *recorder) Publish(e realtime.Event) {
	r.events = append(r.events, e)
}

func TestSumBalanceCountsOnlyActive(t *testing.T) {
	txs := []*Transaction{
		{Amount: decimal.RequireFromString("50.00"), Status: status.Active},
		{Amount: decimal.RequireFromString("-1"), Status: status.Active},
		{Amount: decimal.RequireFromString("100"), Status: status.Deleted},
		{Amount: decimal.RequireFromString("7.25"), Status: status.Paused},
		{Amount: decimal.RequireFromString("0.10"), Status: status.Active},
	}
	if got := SumBalance(txs); !got.Equal(decimal.RequireFromString("49.10")) {
		t.Fatalf("balance = %s, want 49.10", got)
	}
	if got := SumBalance(nil); !got.IsZero() {
		t.Fatalf("empty balance = %s", got)
	}
}

func TestAddAndSetStatusPublishBalance(t *testing.T) {
	customerID := uuid.New()
	repo := &fakeRepo{}
	events := &recorder{}
	svc := NewService(repo, fakeCustomers{customerID: true}, nil, events)
	ctx := context.Background()

	credit, err := svc.Add(ctx, customerID, &CreateTransactionRequest{
		Type: int(TypeCredit), Medium: MediumWeb, Currency: "usd", Amount: "25.5",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if credit.Currency != "USD" || !credit.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected transaction %+v", credit)
	}

	if _, err := svc.RecordCompletion(ctx, customerID, uuid.New(), MediumMobile, time.Now()); err != nil {
		t.Fatalf("record completion: %v", err)
	}

	balance, _ := svc.Balance(ctx, customerID)
	if !balance.Equal(decimal.RequireFromString("24.5")) {
		t.Fatalf("balance = %s", balance)
	}

	if _, err := svc.SetStatus(ctx, customerID, credit.ID, status.Deleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	balance, _ = svc.Balance(ctx, customerID)
	if !balance.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("balance after delete = %s", balance)
	}

	if len(events.events) != 2 {
		t.Fatalf("events = %d, want 2", len(events.events))
	}
	last := events.events[1]
	if last.Type != realtime.EventBalanceChanged || last.CustomerID != customerID {
		t.Fatalf("unexpected event %+v", last)
	}
	if data := last.Data.(BalanceResponse); !data.Balance.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("event balance = %s", data.Balance)
	}
}

func TestSetStatusOtherCustomerIsMissing(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	repo := &fakeRepo{}
	svc := NewService(repo, fakeCustomers{owner: true, other: true}, nil, nil)
	ctx := context.Background()

	tx, _ := svc.Add(ctx, owner, &CreateTransactionRequest{Type: int(TypeReload), Medium: MediumPOS, Currency: "USD", Amount: "10"})
	if _, err := svc.SetStatus(ctx, other, tx.ID, status.Deleted); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	customerID := uuid.New()
	svc := NewService(&fakeRepo{}, fakeCustomers{customerID: true}, nil, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, customerID, &CreateTransactionRequest{Type: 102, Medium: "web", Currency: "USD", Amount: "ten"}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Add(ctx, uuid.New(), &CreateTransactionRequest{Type: 102, Medium: "web", Currency: "USD", Amount: "1"}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestAddChecksStoreOwnership(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	ownStore, foreignStore := uuid.New(), uuid.New()
	repo := &fakeRepo{}
	svc := NewService(repo, fakeCustomers{owner: true, other: true}, fakeStores{ownStore: owner, foreignStore: other}, nil)
	ctx := context.Background()

	tx, err := svc.Add(ctx, owner, &CreateTransactionRequest{Type: int(TypeReload), Medium: MediumPOS, Currency: "USD", Amount: "10", StoreID: ownStore.String()})
	if err != nil {
		t.Fatalf("add with own store: %v", err)
	}
	if !tx.StoreID.Valid || tx.StoreID.UUID != ownStore {
		t.Fatalf("store id = %+v", tx.StoreID)
	}

	for _, id := range []string{foreignStore.String(), uuid.NewString()} {
		_, err := svc.Add(ctx, owner, &CreateTransactionRequest{Type: int(TypeReload), Medium: MediumPOS, Currency: "USD", Amount: "10", StoreID: id})
		if !errors.Is(err, ErrStoreNotOwned) {
			t.Fatalf("store %s: expected ErrStoreNotOwned, got %v", id, err)
		}
	}
	if len(repo.txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(repo.txs))
	}
}

func TestCreateEndpointRejectsForeignStore(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	foreignStore := uuid.New()
	svc := NewService(&fakeRepo{}, fakeCustomers{owner: true, other: true}, fakeStores{foreignStore: other}, nil)

	r := chi.NewRouter()
	r.Mount("/customers/{customerID}/transactions", NewHandler(svc).AdminRoutes())

	b, _ := json.Marshal(map[string]any{"transaction_type": 102, "medium": "web", "currency": "USD", "amount": "5", "store_id": foreignStore.String()})
	req := httptest.NewRequest(http.MethodPost, "/customers/"+owner.String()+"/transactions", bytes.NewReader(b))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateEndpointValidation(t *testing.T) {
	customerID := uuid.New()
	svc := NewService(&fakeRepo{}, fakeCustomers{customerID: true}, nil, nil)

	r := chi.NewRouter()
	r.Mount("/customers/{customerID}/transactions", NewHandler(svc).AdminRoutes())

	post := func(body map[string]any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/customers/"+customerID.String()+"/transactions", bytes.NewReader(b))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"lowercase currency accepted", map[string]any{"transaction_type": 102, "medium": "web", "currency": "eur", "amount": "5"}, http.StatusCreated},
		{"default currency", map[string]any{"transaction_type": 101, "medium": "stripe", "amount": "-2.5"}, http.StatusCreated},
		{"bad currency", map[string]any{"transaction_type": 102, "medium": "web", "currency": "EURO", "amount": "5"}, http.StatusUnprocessableEntity},
		{"bad type", map[string]any{"transaction_type": 7, "medium": "web", "currency": "USD", "amount": "5"}, http.StatusUnprocessableEntity},
		{"bad medium", map[string]any{"transaction_type": 102, "medium": "fax", "currency": "USD", "amount": "5"}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]any{"transaction_type": 102, "medium": "web", "currency": "USD", "amount": "abc"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := post(tt.body); w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}
