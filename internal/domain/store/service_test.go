package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/middleware"
	"github.com/qrsurvey/qrs-api/internal/pkg/imaging"
)

type fakeRepo struct {
	stores     map[uuid.UUID]*Store
	takenKeys  map[string]bool
	createCall int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stores: map[uuid.UUID]*Store{}, takenKeys: map[string]bool{}}
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Store, error) {
	var out []*Store
	for _, s := range f.stores {
		if s.CustomerID == customerID && s.Status != status.Deleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) GetByQRKey(ctx context.Context, qrKey string) (*Store, error) {
	for _, s := range f.stores {
		if s.QRKey == qrKey {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, s *Store) error {
	f.createCall++
	if f.takenKeys[s.QRKey] {
		return errQRKeyTaken
	}
	cp := *s
	f.stores[s.ID] = &cp
	f.takenKeys[s.QRKey] = true
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, s *Store) error {
	cp := *s
	f.stores[s.ID] = &cp
	return nil
}

func (f *fakeRepo) SetSurvey(ctx context.Context, id uuid.UUID, surveyID uuid.NullUUID) error {
	f.stores[id].SurveyID = surveyID
	return nil
}

func (f *fakeRepo) SetLogo(ctx context.Context, id uuid.UUID, url string) error {
	f.stores[id].LogoURL.String = url
	f.stores[id].LogoURL.Valid = true
	return nil
}

type fakeCustomers map[uuid.UUID]bool

func (f fakeCustomers) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	if !f[id] {
		return nil, customer.ErrCustomerNotFound
	}
	return &customer.Customer{ID: id, Status: status.Active}, nil
}

type fakeSurveys map[uuid.UUID]*survey.Survey

func (f fakeSurveys) GetSurvey(ctx context.Context, customerID, id uuid.UUID) (*survey.Survey, error) {
	s, ok := f[id]
	if !ok || s.CustomerID != customerID {
		return nil, survey.ErrSurveyNotFound
	}
	return s, nil
}

func (f fakeSurveys) ListAssignable(ctx context.Context, customerID uuid.UUID) ([]*survey.Survey, error) {
	var out []*survey.Survey
	for _, s := range f {
		if s.CustomerID == customerID && s.IsAssignable() {
			out = append(out, s)
		}
	}
	return out, nil
}

type memFiles struct {
	objects map[string][]byte
	deleted []string
}

func (m *memFiles) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, _ := io.ReadAll(r)
	m.objects[key] = data
	return nil
}

func (m *memFiles) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memFiles) GetURL(key string) string {
	return "https://cdn.example.com/" + key
}

func keys(list ...string) func() string {
	i := 0
	return func() string {
		k := list[i%len(list)]
		i++
		return k
	}
}

func TestCreateRetriesQRKeyOnce(t *testing.T) {
	customerID := uuid.New()
	ctx := context.Background()

	t.Run("second key succeeds", func(t *testing.T) {
		repo := newFakeRepo()
		repo.takenKeys["aaaaaaaa"] = true
		svc := NewService(repo, fakeCustomers{customerID: true}, fakeSurveys{}, nil)
		svc.newKey = keys("aaaaaaaa", "bbbbbbbb")

		st, err := svc.Create(ctx, customerID, &CreateStoreRequest{Name: "Main St"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if st.QRKey != "bbbbbbbb" || repo.createCall != 2 {
			t.Fatalf("qr_key=%s calls=%d", st.QRKey, repo.createCall)
		}
	})

	t.Run("two collisions give up", func(t *testing.T) {
		repo := newFakeRepo()
		repo.takenKeys["aaaaaaaa"] = true
		svc := NewService(repo, fakeCustomers{customerID: true}, fakeSurveys{}, nil)
		svc.newKey = keys("aaaaaaaa")

		if _, err := svc.Create(ctx, customerID, &CreateStoreRequest{Name: "Main St"}); !errors.Is(err, ErrQRKeyConflict) {
			t.Fatalf("expected ErrQRKeyConflict, got %v", err)
		}
		if repo.createCall != 2 {
			t.Fatalf("create called %d times, want 2", repo.createCall)
		}
	})
}

func TestNewQRKeyShape(t *testing.T) {
	k := newQRKey()
	if len(k) != 8 || strings.Contains(k, "-") {
		t.Fatalf("unexpected key %q", k)
	}
}

func TestAssignSurvey(t *testing.T) {
	customerID, otherID := uuid.New(), uuid.New()
	active := &survey.Survey{ID: uuid.New(), CustomerID: customerID, Status: status.Active}
	paused := &survey.Survey{ID: uuid.New(), CustomerID: customerID, Status: status.Paused}
	foreign := &survey.Survey{ID: uuid.New(), CustomerID: otherID, Status: status.Active}

	repo := newFakeRepo()
	svc := NewService(repo, fakeCustomers{customerID: true}, fakeSurveys{active.ID: active, paused.ID: paused, foreign.ID: foreign}, nil)
	ctx := context.Background()
	st, _ := svc.Create(ctx, customerID, &CreateStoreRequest{Name: "Main St"})

	if _, err := svc.AssignSurvey(ctx, customerID, st.ID, &paused.ID); !errors.Is(err, ErrSurveyNotAvailable) {
		t.Fatalf("paused survey: expected ErrSurveyNotAvailable, got %v", err)
	}
	if _, err := svc.AssignSurvey(ctx, customerID, st.ID, &foreign.ID); !errors.Is(err, ErrSurveyNotAvailable) {
		t.Fatalf("foreign survey: expected ErrSurveyNotAvailable, got %v", err)
	}
	if _, err := svc.AssignSurvey(ctx, otherID, st.ID, &foreign.ID); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("foreign store: expected ErrStoreNotFound, got %v", err)
	}

	got, err := svc.AssignSurvey(ctx, customerID, st.ID, &active.ID)
	if err != nil || !got.SurveyID.Valid || got.SurveyID.UUID != active.ID {
		t.Fatalf("assign: %+v %v", got, err)
	}

	got, err = svc.AssignSurvey(ctx, customerID, st.ID, nil)
	if err != nil || got.SurveyID.Valid || repo.stores[st.ID].SurveyID.Valid {
		t.Fatalf("clear: %+v %v", got, err)
	}

	candidates, _ := svc.SurveyCandidates(ctx, customerID)
	if len(candidates) != 1 || candidates[0].ID != active.ID {
		t.Fatalf("candidates = %v", candidates)
	}
}

func pngLogo(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadLogoReplacesPrevious(t *testing.T) {
	customerID := uuid.New()
	files := &memFiles{objects: map[string][]byte{}}
	repo := newFakeRepo()
	svc := NewService(repo, fakeCustomers{customerID: true}, fakeSurveys{}, &Logos{
		Files:     files,
		Processor: imaging.NewProcessor(64),
		MaxBytes:  1 << 20,
	})
	ctx := context.Background()
	st, _ := svc.Create(ctx, customerID, &CreateStoreRequest{Name: "Main St"})

	first, err := svc.UploadLogo(ctx, customerID, st.ID, bytes.NewReader(pngLogo(t, 300, 300)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(first.LogoURL.String, "https://cdn.example.com/logos/"+customerID.String()+"/") {
		t.Fatalf("logo url = %s", first.LogoURL.String)
	}
	if len(files.objects) != 1 {
		t.Fatalf("objects = %d", len(files.objects))
	}

	if _, err := svc.UploadLogo(ctx, customerID, st.ID, bytes.NewReader(pngLogo(t, 10, 10))); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if len(files.objects) != 1 || len(files.deleted) != 1 {
		t.Fatalf("previous logo should be deleted: objects=%d deleted=%d", len(files.objects), len(files.deleted))
	}

	if _, err := svc.UploadLogo(ctx, customerID, st.ID, strings.NewReader("not an image")); !errors.Is(err, ErrInvalidLogo) {
		t.Fatalf("expected ErrInvalidLogo, got %v", err)
	}
}

func TestUploadLogoDisabled(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeCustomers{}, fakeSurveys{}, nil)
	if _, err := svc.UploadLogo(context.Background(), uuid.New(), uuid.New(), strings.NewReader("x")); !errors.Is(err, ErrLogoUploadDisabled) {
		t.Fatalf("expected ErrLogoUploadDisabled, got %v", err)
	}
}

func withCustomer(customerID uuid.UUID, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithSession(r.Context(), &middleware.Session{CustomerID: customerID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestPanelRoutes(t *testing.T) {
	customerID := uuid.New()
	files := &memFiles{objects: map[string][]byte{}}
	svc := NewService(newFakeRepo(), fakeCustomers{customerID: true}, fakeSurveys{}, &Logos{
		Files: files, Processor: imaging.NewProcessor(64), MaxBytes: 1 << 20,
	})
	st, _ := svc.Create(context.Background(), customerID, &CreateStoreRequest{Name: "Main St"})

	r := chi.NewRouter()
	r.Mount("/locations", withCustomer(customerID, NewHandler(svc, "https://qr.example.com/").PanelRoutes()))

	req := httptest.NewRequest(http.MethodGet, "/locations/"+st.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var resp struct {
		Data StoreResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.PublicURL != "https://qr.example.com/s/"+st.QRKey {
		t.Fatalf("public url = %s", resp.Data.PublicURL)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("logo", "logo.png")
	part.Write(pngLogo(t, 20, 20))
	mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/locations/"+st.ID.String()+"/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPut, "/locations/"+uuid.NewString()+"/survey", strings.NewReader(`{"survey_id":null}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown store: %d", w.Code)
	}
}
