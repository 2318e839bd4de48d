package survey

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Survey is a named, customer-owned list of multiple-choice questions.
type Survey struct {
	ID            uuid.UUID      `db:"id"`
	CustomerID    uuid.UUID      `db:"customer_id"`
	Name          string         `db:"name"`
	Description   sql.NullString `db:"description"`
	Notes         sql.NullString `db:"notes"`
	Status        status.Status  `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	QuestionCount int            `db:"question_count"`
}

// IsAssignable reports whether a store may be pointed at this survey.
func (s *Survey) IsAssignable() bool {
	return s.Status.IsActive()
}

// IsRenderable reports whether the public page may show this survey.
func (s *Survey) IsRenderable() bool {
	return s.Status.IsActive()
}

type Question struct {
	ID          uuid.UUID      `db:"id"`
	SurveyID    uuid.UUID      `db:"survey_id"`
	Question    string         `db:"question"`
	Description sql.NullString `db:"description"`
	Notes       sql.NullString `db:"notes"`
	Rank        int            `db:"rank"`
	Status      status.Status  `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (q *Question) IsPublic() bool {
	return q.Status.IsActive()
}

type Option struct {
	ID         uuid.UUID      `db:"id"`
	QuestionID uuid.UUID      `db:"survey_question_id"`
	Option     string         `db:"option"`
	Notes      sql.NullString `db:"notes"`
	Rank       int            `db:"rank"`
	Status     status.Status  `db:"status"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (o *Option) IsPublic() bool {
	return o.Status.IsActive()
}
