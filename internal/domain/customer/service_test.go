package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

type fakeRepo struct {
	customers map[uuid.UUID]*Customer
	linked    map[uuid.UUID]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: map[uuid.UUID]*Customer{}, linked: map[uuid.UUID]uuid.UUID{}}
}

func (f *fakeRepo) List(ctx context.Context, includeDeleted bool) ([]*ListItem, error) {
	var out []*ListItem
	for _, c := range f.customers {
		if includeDeleted || c.Status != status.Deleted {
			out = append(out, &ListItem{Customer: *c})
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Create(ctx context.Context, c *Customer) error {
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, c *Customer) error {
	if _, ok := f.customers[c.ID]; !ok {
		return ErrCustomerNotFound
	}
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeRepo) LinkUser(ctx context.Context, id, userID uuid.UUID) error {
	f.linked[id] = userID
	return nil
}

type fakeLogins struct {
	err error
}

func (f *fakeLogins) CreateStoreLogin(ctx context.Context, email, password string, customerID uuid.UUID) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return uuid.New(), nil
}

func newRouter(svc *Service) chi.Router {
	r := chi.NewRouter()
	r.Mount("/customers", NewHandler(svc).Routes(Nested{}))
	return r
}

func TestCreateRequiresContactFields(t *testing.T) {
	router := newRouter(NewService(newFakeRepo(), nil))

	body, _ := json.Marshal(map[string]any{"name": "Cafe Uno"})
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK      bool              `json:"ok"`
		Details map[string]string `json:"details"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.OK || resp.Details["contact_name"] == "" || resp.Details["phone"] == "" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestCreateWithLoginLinksUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeLogins{})

	c, err := svc.Create(context.Background(), &CreateCustomerRequest{
		Name: "Cafe Uno", ContactName: "Ana", Phone: "555-0100",
		Login: &LoginRequest{Email: "ana@example.com", Password: "secret1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.UserID.Valid || repo.linked[c.ID] != c.UserID.UUID {
		t.Fatalf("login was not linked")
	}
	if c.Status != status.Active {
		t.Fatalf("default status = %v", c.Status)
	}
}

func TestCreateLoginFailureKeepsCustomer(t *testing.T) {
	repo := newFakeRepo()
	router := newRouter(NewService(repo, &fakeLogins{err: errors.New("email taken")}))

	body, _ := json.Marshal(map[string]any{
		"name": "Cafe Uno", "contact_name": "Ana", "phone": "555-0100",
		"login": map[string]string{"email": "ana@example.com", "password": "secret1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if len(repo.customers) != 1 {
		t.Fatalf("customer should remain after login failure")
	}
}

func TestUpdateStatusAndEnsureActive(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	c, _ := svc.Create(ctx, &CreateCustomerRequest{Name: "A", ContactName: "B", Phone: "1"})
	if err := svc.EnsureActive(ctx, c.ID); err != nil {
		t.Fatalf("active customer rejected: %v", err)
	}

	onHold := int(status.OnHold)
	if _, err := svc.Update(ctx, c.ID, &UpdateCustomerRequest{Status: &onHold}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.EnsureActive(ctx, c.ID); !errors.Is(err, ErrCustomerInactive) {
		t.Fatalf("expected ErrCustomerInactive, got %v", err)
	}
	if err := svc.EnsureActive(ctx, uuid.New()); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestGetUnknownCustomerIs404(t *testing.T) {
	router := newRouter(NewService(newFakeRepo(), nil))
	req := httptest.NewRequest(http.MethodGet, "/customers/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
