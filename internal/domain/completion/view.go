package completion

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
)

// Kind says whether a loaded page can take answers.
type Kind string

const (
	KindOK          Kind = "ok"
	KindUnavailable Kind = "unavailable"
)

// QuestionView is a public question with its active options in rank order.
type QuestionView struct {
	*survey.Question
	Options []*survey.Option
}

// Option returns the question's option with id, or nil.
func (q *QuestionView) Option(id uuid.UUID) *survey.Option {
	opt, _ := lo.Find(q.Options, func(o *survey.Option) bool { return o.ID == id })
	return opt
}

// View is everything the public page renders for one qr_key.
type View struct {
	Kind      Kind
	Store     *store.Store
	Survey    *survey.Survey
	Questions []*QuestionView
}

// Load resolves qrKey to its store and, when the survey may be shown, the
// active questions and options. A missing store is ErrStoreNotFound; every
// other reason not to show the survey is a KindUnavailable view.
func (s *Service) Load(ctx context.Context, qrKey string) (*View, error) {
	st, err := s.stores.GetByQRKey(ctx, qrKey)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	view := &View{Kind: KindUnavailable, Store: st}

	ok, err := s.customerAllowsPublicFlow(ctx, st.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return view, nil
	}

	if !st.SurveyID.Valid {
		return view, nil
	}
	sv, err := s.surveys.GetSurvey(ctx, st.SurveyID.UUID)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.CustomerID != st.CustomerID || !sv.IsRenderable() {
		return view, nil
	}
	view.Survey = sv

	questions, err := s.surveys.ListPublicQuestions(ctx, sv.ID)
	if err != nil {
		return nil, err
	}
	// Rows are filtered by status in the query as well.
	questions = lo.Filter(questions, func(q *survey.Question, _ int) bool { return q.IsPublic() })
	ids := lo.Map(questions, func(q *survey.Question, _ int) uuid.UUID { return q.ID })
	options, err := s.surveys.ListPublicOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	options = lo.Filter(options, func(o *survey.Option, _ int) bool { return o.IsPublic() })
	byQuestion := lo.GroupBy(options, func(o *survey.Option) uuid.UUID { return o.QuestionID })

	view.Kind = KindOK
	view.Questions = lo.Map(questions, func(q *survey.Question, _ int) *QuestionView {
		return &QuestionView{Question: q, Options: byQuestion[q.ID]}
	})
	return view, nil
}

func (s *Service) customerAllowsPublicFlow(ctx context.Context, customerID uuid.UUID) (bool, error) {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return false, nil
		}
		return false, err
	}
	return c != nil && c.CanUsePublicFlow(), nil
}
