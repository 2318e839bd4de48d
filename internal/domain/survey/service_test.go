package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/rank"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/middleware"
)

type fakeRepo struct {
	surveys   map[uuid.UUID]*Survey
	questions map[uuid.UUID]*Question
	options   map[uuid.UUID]*Option
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		surveys:   map[uuid.UUID]*Survey{},
		questions: map[uuid.UUID]*Question{},
		options:   map[uuid.UUID]*Option{},
	}
}

func (f *fakeRepo) ListSurveys(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]*Survey, error) {
	var out []*Survey
	for _, s := range f.surveys {
		if s.CustomerID != customerID || s.Status == status.Deleted || (activeOnly && !s.Status.IsActive()) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) CreateSurvey(ctx context.Context, s *Survey) error {
	cp := *s
	f.surveys[s.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateSurvey(ctx context.Context, s *Survey) error {
	cp := *s
	f.surveys[s.ID] = &cp
	return nil
}

func (f *fakeRepo) ListQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error) {
	var out []*Question
	for _, q := range f.questions {
		if q.SurveyID == surveyID && q.Status != status.Deleted {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeRepo) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeRepo) NextQuestionRank(ctx context.Context, surveyID uuid.UUID) (int, error) {
	var ranks []int
	for _, q := range f.questions {
		if q.SurveyID == surveyID {
			ranks = append(ranks, q.Rank)
		}
	}
	return rank.NextRank(ranks), nil
}

func (f *fakeRepo) CreateQuestion(ctx context.Context, q *Question) error {
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateQuestion(ctx context.Context, q *Question) error {
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeRepo) ListOptions(ctx context.Context, questionID uuid.UUID) ([]*Option, error) {
	var out []*Option
	for _, o := range f.options {
		if o.QuestionID == questionID && o.Status != status.Deleted {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (f *fakeRepo) GetOption(ctx context.Context, id uuid.UUID) (*Option, error) {
	o, ok := f.options[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) NextOptionRank(ctx context.Context, questionID uuid.UUID) (int, error) {
	var ranks []int
	for _, o := range f.options {
		if o.QuestionID == questionID {
			ranks = append(ranks, o.Rank)
		}
	}
	return rank.NextRank(ranks), nil
}

func (f *fakeRepo) CreateOption(ctx context.Context, o *Option) error {
	cp := *o
	f.options[o.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateOption(ctx context.Context, o *Option) error {
	cp := *o
	f.options[o.ID] = &cp
	return nil
}

func (f *fakeRepo) ListPublicQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error) {
	return nil, nil
}

func (f *fakeRepo) ListPublicOptions(ctx context.Context, questionIDs []uuid.UUID) ([]*Option, error) {
	return nil, nil
}

// questionRanks exposes the fake's questions as a rank.Store.
type questionRanks struct {
	repo *fakeRepo
	err  error
}

func (s *questionRanks) ListSiblings(ctx context.Context, surveyID uuid.UUID) ([]rank.Item, error) {
	qs, _ := s.repo.ListQuestions(ctx, surveyID)
	items := make([]rank.Item, 0, len(qs))
	for _, q := range qs {
		items = append(items, rank.Item{ID: q.ID, Rank: q.Rank})
	}
	return items, nil
}

func (s *questionRanks) SwapRanks(ctx context.Context, surveyID uuid.UUID, swap rank.Swap) error {
	if s.err != nil {
		return s.err
	}
	s.repo.questions[swap.Target.ID].Rank = swap.Neighbor.Rank
	s.repo.questions[swap.Neighbor.ID].Rank = swap.Target.Rank
	return nil
}

type noRanks struct{}

func (noRanks) ListSiblings(context.Context, uuid.UUID) ([]rank.Item, error) { return nil, nil }
func (noRanks) SwapRanks(context.Context, uuid.UUID, rank.Swap) error        { return nil }

func seed(t *testing.T, svc *Service, customerID uuid.UUID, questions ...string) (*Survey, []*Question) {
	t.Helper()
	ctx := context.Background()
	sv, err := svc.CreateSurvey(ctx, customerID, &CreateSurveyRequest{Name: "Visit"})
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	var qs []*Question
	for _, text := range questions {
		q, err := svc.CreateQuestion(ctx, customerID, sv.ID, &CreateQuestionRequest{Question: text})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
		qs = append(qs, q)
	}
	return sv, qs
}

func TestCreateQuestionAppendsAfterDeleted(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noRanks{}, noRanks{})
	customerID := uuid.New()
	ctx := context.Background()

	sv, qs := seed(t, svc, customerID, "A", "B")
	if qs[0].Rank != 1 || qs[1].Rank != 2 {
		t.Fatalf("ranks = %d, %d", qs[0].Rank, qs[1].Rank)
	}

	deleted := int(status.Deleted)
	if _, err := svc.UpdateQuestion(ctx, customerID, sv.ID, qs[1].ID, &UpdateQuestionRequest{Status: &deleted}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	q, err := svc.CreateQuestion(ctx, customerID, sv.ID, &CreateQuestionRequest{Question: "C"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Rank != 3 {
		t.Fatalf("rank = %d, want 3", q.Rank)
	}

	list, _ := svc.ListQuestions(ctx, customerID, sv.ID)
	if len(list) != 2 {
		t.Fatalf("deleted question should be hidden, got %d", len(list))
	}
	if _, err := svc.GetQuestion(ctx, customerID, sv.ID, qs[1].ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestOtherCustomersSurveyIsMissing(t *testing.T) {
	svc := NewService(newFakeRepo(), noRanks{}, noRanks{})
	owner := uuid.New()
	sv, qs := seed(t, svc, owner, "A")
	ctx := context.Background()

	stranger := uuid.New()
	if _, err := svc.GetSurvey(ctx, stranger, sv.ID); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("expected ErrSurveyNotFound, got %v", err)
	}
	if _, err := svc.CreateQuestion(ctx, stranger, sv.ID, &CreateQuestionRequest{Question: "X"}); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("expected ErrSurveyNotFound, got %v", err)
	}
	if _, err := svc.ListOptions(ctx, owner, uuid.New(), qs[0].ID); !errors.Is(err, ErrSurveyNotFound) {
		t.Fatalf("question under wrong survey should be missing, got %v", err)
	}
}

func TestListAssignableSkipsPaused(t *testing.T) {
	svc := NewService(newFakeRepo(), noRanks{}, noRanks{})
	customerID := uuid.New()
	ctx := context.Background()

	paused := int(status.Paused)
	svc.CreateSurvey(ctx, customerID, &CreateSurveyRequest{Name: "Active"})
	svc.CreateSurvey(ctx, customerID, &CreateSurveyRequest{Name: "Paused", Status: &paused})

	all, _ := svc.ListSurveys(ctx, customerID)
	assignable, _ := svc.ListAssignable(ctx, customerID)
	if len(all) != 2 || len(assignable) != 1 || assignable[0].Name != "Active" {
		t.Fatalf("all=%d assignable=%d", len(all), len(assignable))
	}
}

func TestOptionRanksAreScopedToQuestion(t *testing.T) {
	svc := NewService(newFakeRepo(), noRanks{}, noRanks{})
	customerID := uuid.New()
	sv, qs := seed(t, svc, customerID, "A", "B")
	ctx := context.Background()

	a1, _ := svc.CreateOption(ctx, customerID, sv.ID, qs[0].ID, &CreateOptionRequest{Option: "Yes"})
	a2, _ := svc.CreateOption(ctx, customerID, sv.ID, qs[0].ID, &CreateOptionRequest{Option: "No"})
	b1, _ := svc.CreateOption(ctx, customerID, sv.ID, qs[1].ID, &CreateOptionRequest{Option: "Maybe"})

	if a1.Rank != 1 || a2.Rank != 2 || b1.Rank != 1 {
		t.Fatalf("ranks = %d, %d, %d", a1.Rank, a2.Rank, b1.Rank)
	}
	if _, err := svc.GetOption(ctx, customerID, sv.ID, qs[1].ID, a1.ID); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("option under wrong question should be missing, got %v", err)
	}
}

func newRouter(svc *Service, customerID uuid.UUID) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithSession(req.Context(), &middleware.Session{CustomerID: customerID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Mount("/surveys", NewHandler(svc).Routes())
	return r
}

func move(router http.Handler, path, direction string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"direction": direction})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMoveQuestionEndpoint(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &questionRanks{repo: repo}, noRanks{})
	customerID := uuid.New()
	sv, qs := seed(t, svc, customerID, "A", "B", "C")
	router := newRouter(svc, customerID)

	path := "/surveys/" + sv.ID.String() + "/questions/" + qs[2].ID.String() + "/move"
	w := move(router, path, "up")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data rank.Outcome `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.State != rank.StateConfirmed {
		t.Fatalf("state = %s", resp.Data.State)
	}
	got := []uuid.UUID{resp.Data.Items[0].ID, resp.Data.Items[1].ID, resp.Data.Items[2].ID}
	want := []uuid.UUID{qs[0].ID, qs[2].ID, qs[1].ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	w = move(router, "/surveys/"+sv.ID.String()+"/questions/"+qs[0].ID.String()+"/move", "up")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Data.State != rank.StateUnchanged {
		t.Fatalf("boundary move: %d %s", w.Code, resp.Data.State)
	}

	if w := move(router, path, "sideways"); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid direction: expected 422, got %d", w.Code)
	}
}

func TestMoveQuestionConflictReturnsFreshList(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &questionRanks{repo: repo, err: rank.ErrRankConflict}, noRanks{})
	customerID := uuid.New()
	sv, qs := seed(t, svc, customerID, "A", "B")
	router := newRouter(svc, customerID)

	w := move(router, "/surveys/"+sv.ID.String()+"/questions/"+qs[1].ID.String()+"/move", "up")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var resp struct {
		Code string       `json:"code"`
		Data rank.Outcome `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "RANK_CONFLICT" || resp.Data.State != rank.StateReverted || len(resp.Data.Items) != 2 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if resp.Data.Items[0].ID != qs[0].ID {
		t.Fatalf("list should keep stored order")
	}
}
