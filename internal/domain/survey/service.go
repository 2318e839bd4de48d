package survey

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/domain/rank"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Service handles survey authoring for a customer's store panel. Every
// method takes the session customer and treats rows owned by anyone else
// as missing.
type Service struct {
	repo      Repository
	questions *rank.Reorderer
	options   *rank.Reorderer
}

// NewService creates survey service
func NewService(repo Repository, questionRanks, optionRanks rank.Store) *Service {
	return &Service{
		repo:      repo,
		questions: rank.NewReorderer(questionRanks, "question"),
		options:   rank.NewReorderer(optionRanks, "option"),
	}
}

func (s *Service) ListSurveys(ctx context.Context, customerID uuid.UUID) ([]*Survey, error) {
	return s.repo.ListSurveys(ctx, customerID, false)
}

// ListAssignable returns the customer's surveys a store may be pointed at.
func (s *Service) ListAssignable(ctx context.Context, customerID uuid.UUID) ([]*Survey, error) {
	return s.repo.ListSurveys(ctx, customerID, true)
}

// GetSurvey returns a survey owned by customerID. Deleted surveys are missing.
func (s *Service) GetSurvey(ctx context.Context, customerID, id uuid.UUID) (*Survey, error) {
	sv, err := s.repo.GetSurvey(ctx, id)
	if err != nil {
		return nil, err
	}
	if sv == nil || sv.CustomerID != customerID || !sv.Status.VisibleForAuthoring() {
		return nil, ErrSurveyNotFound
	}
	return sv, nil
}

func (s *Service) CreateSurvey(ctx context.Context, customerID uuid.UUID, req *CreateSurveyRequest) (*Survey, error) {
	now := time.Now()
	sv := &Survey{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Name:        strings.TrimSpace(req.Name),
		Description: nullString(req.Description),
		Notes:       nullString(req.Notes),
		Status:      statusOrDefault(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSurvey(ctx, sv); err != nil {
		return nil, err
	}

	log.Info().Str("customer_id", customerID.String()).Str("survey_id", sv.ID.String()).Msg("survey created")
	return sv, nil
}

func (s *Service) UpdateSurvey(ctx context.Context, customerID, id uuid.UUID, req *UpdateSurveyRequest) (*Survey, error) {
	sv, err := s.GetSurvey(ctx, customerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sv.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		sv.Description = nullString(*req.Description)
	}
	if req.Notes != nil {
		sv.Notes = nullString(*req.Notes)
	}
	if req.Status != nil {
		sv.Status = status.Status(*req.Status)
	}
	sv.UpdatedAt = time.Now()

	if err := s.repo.UpdateSurvey(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *Service) ListQuestions(ctx context.Context, customerID, surveyID uuid.UUID) ([]*Question, error) {
	if _, err := s.GetSurvey(ctx, customerID, surveyID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, surveyID)
}

// GetQuestion returns a question of an owned survey. Deleted questions are missing.
func (s *Service) GetQuestion(ctx context.Context, customerID, surveyID, id uuid.UUID) (*Question, error) {
	if _, err := s.GetSurvey(ctx, customerID, surveyID); err != nil {
		return nil, err
	}

	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil || q.SurveyID != surveyID || !q.Status.VisibleForAuthoring() {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// CreateQuestion appends a question after every existing one, deleted included.
func (s *Service) CreateQuestion(ctx context.Context, customerID, surveyID uuid.UUID, req *CreateQuestionRequest) (*Question, error) {
	if _, err := s.GetSurvey(ctx, customerID, surveyID); err != nil {
		return nil, err
	}

	next, err := s.repo.NextQuestionRank(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	q := &Question{
		ID:          uuid.New(),
		SurveyID:    surveyID,
		Question:    strings.TrimSpace(req.Question),
		Description: nullString(req.Description),
		Notes:       nullString(req.Notes),
		Rank:        next,
		Status:      statusOrDefault(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, customerID, surveyID, id uuid.UUID, req *UpdateQuestionRequest) (*Question, error) {
	q, err := s.GetQuestion(ctx, customerID, surveyID, id)
	if err != nil {
		return nil, err
	}

	if req.Question != nil {
		q.Question = strings.TrimSpace(*req.Question)
	}
	if req.Description != nil {
		q.Description = nullString(*req.Description)
	}
	if req.Notes != nil {
		q.Notes = nullString(*req.Notes)
	}
	if req.Status != nil {
		q.Status = status.Status(*req.Status)
	}
	q.UpdatedAt = time.Now()

	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// MoveQuestion swaps a question with its neighbour in dir.
func (s *Service) MoveQuestion(ctx context.Context, customerID, surveyID, id uuid.UUID, dir rank.Direction) (*rank.Outcome, error) {
	if _, err := s.GetQuestion(ctx, customerID, surveyID, id); err != nil {
		return nil, err
	}
	return s.questions.Move(ctx, surveyID, id, dir)
}

func (s *Service) ListOptions(ctx context.Context, customerID, surveyID, questionID uuid.UUID) ([]*Option, error) {
	if _, err := s.GetQuestion(ctx, customerID, surveyID, questionID); err != nil {
		return nil, err
	}
	return s.repo.ListOptions(ctx, questionID)
}

func (s *Service) GetOption(ctx context.Context, customerID, surveyID, questionID, id uuid.UUID) (*Option, error) {
	if _, err := s.GetQuestion(ctx, customerID, surveyID, questionID); err != nil {
		return nil, err
	}

	o, err := s.repo.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.QuestionID != questionID || !o.Status.VisibleForAuthoring() {
		return nil, ErrOptionNotFound
	}
	return o, nil
}

func (s *Service) CreateOption(ctx context.Context, customerID, surveyID, questionID uuid.UUID, req *CreateOptionRequest) (*Option, error) {
	if _, err := s.GetQuestion(ctx, customerID, surveyID, questionID); err != nil {
		return nil, err
	}

	next, err := s.repo.NextOptionRank(ctx, questionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &Option{
		ID:         uuid.New(),
		QuestionID: questionID,
		Option:     strings.TrimSpace(req.Option),
		Notes:      nullString(req.Notes),
		Rank:       next,
		Status:     statusOrDefault(req.Status),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) UpdateOption(ctx context.Context, customerID, surveyID, questionID, id uuid.UUID, req *UpdateOptionRequest) (*Option, error) {
	o, err := s.GetOption(ctx, customerID, surveyID, questionID, id)
	if err != nil {
		return nil, err
	}

	if req.Option != nil {
		o.Option = strings.TrimSpace(*req.Option)
	}
	if req.Notes != nil {
		o.Notes = nullString(*req.Notes)
	}
	if req.Status != nil {
		o.Status = status.Status(*req.Status)
	}
	o.UpdatedAt = time.Now()

	if err := s.repo.UpdateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) MoveOption(ctx context.Context, customerID, surveyID, questionID, id uuid.UUID, dir rank.Direction) (*rank.Outcome, error) {
	if _, err := s.GetOption(ctx, customerID, surveyID, questionID, id); err != nil {
		return nil, err
	}
	return s.options.Move(ctx, questionID, id, dir)
}
