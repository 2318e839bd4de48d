package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/customer"
	"github.com/qrsurvey/qrs-api/internal/domain/store"
	"github.com/qrsurvey/qrs-api/internal/domain/survey"
	"github.com/qrsurvey/qrs-api/internal/domain/transaction"
	"github.com/qrsurvey/qrs-api/internal/pkg/logger"
	"github.com/qrsurvey/qrs-api/internal/pkg/realtime"
)

// StoreLookup resolves QR keys.
type StoreLookup interface {
	GetByQRKey(ctx context.Context, qrKey string) (*store.Store, error)
}

// CustomerLookup reports the owning customer's status.
type CustomerLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// SurveyReader reads surveys without an owner check; survey.Repository
// satisfies it.
type SurveyReader interface {
	GetSurvey(ctx context.Context, id uuid.UUID) (*survey.Survey, error)
	ListPublicQuestions(ctx context.Context, surveyID uuid.UUID) ([]*survey.Question, error)
	ListPublicOptions(ctx context.Context, questionIDs []uuid.UUID) ([]*survey.Option, error)
}

// Ledger records the completion debit and announces the new balance.
type Ledger interface {
	RecordCompletion(ctx context.Context, customerID, storeID uuid.UUID, medium string, at time.Time) (*transaction.Transaction, error)
	PublishBalance(ctx context.Context, customerID uuid.UUID)
}

// Publisher delivers live events to a customer's dashboards.
type Publisher interface {
	Publish(event realtime.Event)
}

// SubmitRequest maps each question id to the chosen option id.
type SubmitRequest struct {
	Answers map[uuid.UUID]uuid.UUID `json:"answers"`
}

// ClientInfo is what the request says about the person submitting.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Receipt identifies a recorded submission.
type Receipt struct {
	ResponseID    uuid.UUID `json:"response_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Medium        string    `json:"medium"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Service runs the public survey flow
type Service struct {
	stores    StoreLookup
	customers CustomerLookup
	surveys   SurveyReader
	ledger    Ledger
	responses Repository
	events    Publisher
	now       func() time.Time
}

// NewService creates completion service. events may be nil.
func NewService(stores StoreLookup, customers CustomerLookup, surveys SurveyReader, ledger Ledger, responses Repository, events Publisher) *Service {
	return &Service{
		stores:    stores,
		customers: customers,
		surveys:   surveys,
		ledger:    ledger,
		responses: responses,
		events:    events,
		now:       time.Now,
	}
}

// DetectMedium classifies a user agent as mobile or web.
func DetectMedium(userAgent string) string {
	if strings.Contains(strings.ToLower(userAgent), "mobile") {
		return transaction.MediumMobile
	}
	return transaction.MediumWeb
}

// Submit records a completed survey: one debit transaction, then one
// response row per question. The survey is reloaded first so status
// changes since the page was served are honoured.
//
// The two writes are not atomic. If the responses insert fails the debit
// stays in place; this is logged and reported as ErrNotRecorded.
func (s *Service) Submit(ctx context.Context, qrKey string, req *SubmitRequest, client ClientInfo) (*Receipt, error) {
	view, err := s.Load(ctx, qrKey)
	if err != nil {
		return nil, err
	}
	if view.Kind != KindOK {
		return nil, ErrUnavailable
	}
	if len(view.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	chosen := make([]*survey.Option, len(view.Questions))
	for i, q := range view.Questions {
		optionID, ok := req.Answers[q.ID]
		opt := q.Option(optionID)
		if !ok || opt == nil {
			return nil, &UnansweredError{Index: i, QuestionID: q.ID}
		}
		chosen[i] = opt
	}

	st := view.Store
	medium := DetectMedium(client.UserAgent)
	submittedAt := s.now().UTC()

	tx, err := s.ledger.RecordCompletion(ctx, st.CustomerID, st.ID, medium, submittedAt)
	if err != nil {
		return nil, err
	}

	responseID := uuid.New()
	ip := client.IP
	if ip == "" {
		ip = "unknown"
	}
	rows := make([]Response, len(view.Questions))
	for i, q := range view.Questions {
		rows[i] = Response{
			ID:             uuid.New(),
			ResponseID:     responseID,
			StoreID:        st.ID,
			SurveyID:       view.Survey.ID,
			QuestionID:     q.ID,
			OptionID:       chosen[i].ID,
			ResponseOption: chosen[i].Option,
			IPAddress:      ip,
			TransactionID:  tx.ID,
			SubmittedAt:    submittedAt,
		}
	}

	if err := s.responses.CreateBatch(ctx, rows); err != nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("transaction_id", tx.ID.String()).
			Str("store_id", st.ID.String()).
			Msg("completion debit recorded without responses")
		return nil, fmt.Errorf("%w: %v", ErrNotRecorded, err)
	}

	logger.FromContext(ctx).Info().
		Str("store_id", st.ID.String()).
		Str("survey_id", view.Survey.ID.String()).
		Str("response_id", responseID.String()).
		Str("medium", medium).
		Msg("survey completed")

	s.ledger.PublishBalance(ctx, st.CustomerID)
	if s.events != nil {
		s.events.Publish(realtime.Event{
			Type:       realtime.EventSurveyCompleted,
			CustomerID: st.CustomerID,
			Data: map[string]interface{}{
				"store_id":    st.ID,
				"survey_id":   view.Survey.ID,
				"response_id": responseID,
			},
		})
	}

	return &Receipt{
		ResponseID:    responseID,
		TransactionID: tx.ID,
		Medium:        medium,
		SubmittedAt:   submittedAt,
	}, nil
}
