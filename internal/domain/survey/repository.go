package survey

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/qrsurvey/qrs-api/internal/domain/rank"
	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/pkg/database"
)

// Repository defines survey, question and option data access
type Repository interface {
	ListSurveys(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]*Survey, error)
	GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error)
	CreateSurvey(ctx context.Context, s *Survey) error
	UpdateSurvey(ctx context.Context, s *Survey) error

	ListQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	NextQuestionRank(ctx context.Context, surveyID uuid.UUID) (int, error)
	CreateQuestion(ctx context.Context, q *Question) error
	UpdateQuestion(ctx context.Context, q *Question) error

	ListOptions(ctx context.Context, questionID uuid.UUID) ([]*Option, error)
	GetOption(ctx context.Context, id uuid.UUID) (*Option, error)
	NextOptionRank(ctx context.Context, questionID uuid.UUID) (int, error)
	CreateOption(ctx context.Context, o *Option) error
	UpdateOption(ctx context.Context, o *Option) error

	// Public flow: active rows only, ordered by rank.
	ListPublicQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error)
	ListPublicOptions(ctx context.Context, questionIDs []uuid.UUID) ([]*Option, error)
}

type repository struct {
	db        *sqlx.DB
	questions *rank.SQLStore
	options   *rank.SQLStore
}

// NewRepository creates survey repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db:        db,
		questions: QuestionRanks(db),
		options:   OptionRanks(db),
	}
}

// QuestionRanks is the rank store for questions under a survey.
func QuestionRanks(db *sqlx.DB) *rank.SQLStore {
	return rank.NewSQLStore(db, "survey_questions", "survey_id")
}

// OptionRanks is the rank store for options under a question.
func OptionRanks(db *sqlx.DB) *rank.SQLStore {
	return rank.NewSQLStore(db, "survey_options", "survey_question_id")
}

const surveyColumns = `
	id, customer_id, name, description, notes, status, created_at, updated_at,
	(SELECT COUNT(*) FROM survey_questions q WHERE q.survey_id = surveys.id AND q.` + status.NotDeletedClause + `) AS question_count
`

const questionColumns = `id, survey_id, question, description, notes, rank, status, created_at, updated_at`

const optionColumns = `id, survey_question_id, option, notes, rank, status, created_at, updated_at`

func (r *repository) ListSurveys(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]*Survey, error) {
	filter := status.NotDeletedClause
	if activeOnly {
		filter = status.ActiveClause
	}
	query := `SELECT ` + surveyColumns + ` FROM surveys
		WHERE customer_id = $1 AND ` + filter + `
		ORDER BY created_at DESC`

	var out []*Survey
	if err := r.db.SelectContext(ctx, &out, query, customerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetSurvey(ctx context.Context, id uuid.UUID) (*Survey, error) {
	var s Survey
	if err := r.db.GetContext(ctx, &s, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateSurvey(ctx context.Context, s *Survey) error {
	query := `
		INSERT INTO surveys (id, customer_id, name, description, notes, status, created_at, updated_at)
		VALUES (:id, :customer_id, :name, :description, :notes, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *repository) UpdateSurvey(ctx context.Context, s *Survey) error {
	query := `
		UPDATE surveys
		SET name = :name, description = :description, notes = :notes,
			status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	return namedUpdate(ctx, r.db, query, s, ErrSurveyNotFound)
}

func (r *repository) ListQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error) {
	query := `SELECT ` + questionColumns + ` FROM survey_questions
		WHERE survey_id = $1 AND ` + status.NotDeletedClause + `
		ORDER BY rank ASC`

	var out []*Question
	if err := r.db.SelectContext(ctx, &out, query, surveyID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	var q Question
	if err := r.db.GetContext(ctx, &q, `SELECT `+questionColumns+` FROM survey_questions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) NextQuestionRank(ctx context.Context, surveyID uuid.UUID) (int, error) {
	return r.questions.NextRank(ctx, surveyID)
}

func (r *repository) CreateQuestion(ctx context.Context, q *Question) error {
	query := `
		INSERT INTO survey_questions (` + questionColumns + `)
		VALUES (:id, :survey_id, :question, :description, :notes, :rank, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, q)
	if database.IsUniqueViolation(err, "survey_questions_rank_key") {
		return rank.ErrRankConflict
	}
	return err
}

// UpdateQuestion never touches rank; reordering goes through the rank store.
func (r *repository) UpdateQuestion(ctx context.Context, q *Question) error {
	query := `
		UPDATE survey_questions
		SET question = :question, description = :description, notes = :notes,
			status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	return namedUpdate(ctx, r.db, query, q, ErrQuestionNotFound)
}

func (r *repository) ListOptions(ctx context.Context, questionID uuid.UUID) ([]*Option, error) {
	query := `SELECT ` + optionColumns + ` FROM survey_options
		WHERE survey_question_id = $1 AND ` + status.NotDeletedClause + `
		ORDER BY rank ASC`

	var out []*Option
	if err := r.db.SelectContext(ctx, &out, query, questionID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetOption(ctx context.Context, id uuid.UUID) (*Option, error) {
	var o Option
	if err := r.db.GetContext(ctx, &o, `SELECT `+optionColumns+` FROM survey_options WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) NextOptionRank(ctx context.Context, questionID uuid.UUID) (int, error) {
	return r.options.NextRank(ctx, questionID)
}

func (r *repository) CreateOption(ctx context.Context, o *Option) error {
	query := `
		INSERT INTO survey_options (` + optionColumns + `)
		VALUES (:id, :survey_question_id, :option, :notes, :rank, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, o)
	if database.IsUniqueViolation(err, "survey_options_rank_key") {
		return rank.ErrRankConflict
	}
	return err
}

func (r *repository) UpdateOption(ctx context.Context, o *Option) error {
	query := `
		UPDATE survey_options
		SET option = :option, notes = :notes, status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	return namedUpdate(ctx, r.db, query, o, ErrOptionNotFound)
}

func (r *repository) ListPublicQuestions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error) {
	query := `SELECT ` + questionColumns + ` FROM survey_questions
		WHERE survey_id = $1 AND ` + status.ActiveClause + `
		ORDER BY rank ASC`

	var out []*Question
	if err := r.db.SelectContext(ctx, &out, query, surveyID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListPublicOptions(ctx context.Context, questionIDs []uuid.UUID) ([]*Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(questionIDs))
	for i, id := range questionIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + optionColumns + ` FROM survey_options
		WHERE survey_question_id = ANY($1::uuid[]) AND ` + status.ActiveClause + `
		ORDER BY survey_question_id, rank ASC`

	var out []*Option
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return out, nil
}

func namedUpdate(ctx context.Context, db *sqlx.DB, query string, arg interface{}, notFound error) error {
	res, err := db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}
