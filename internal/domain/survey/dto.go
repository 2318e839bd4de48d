package survey

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// CreateSurveyRequest for POST /api/v1/store/surveys
type CreateSurveyRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Notes       string `json:"notes" validate:"max=2000"`
	Status      *int   `json:"status" validate:"omitempty,status"`
}

// UpdateSurveyRequest for PATCH /api/v1/store/surveys/{surveyID}.
// Setting status to -1 deletes the survey.
type UpdateSurveyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	Status      *int    `json:"status" validate:"omitempty,status"`
}

type CreateQuestionRequest struct {
	Question    string `json:"question" validate:"required,max=500"`
	Description string `json:"description" validate:"max=2000"`
	Notes       string `json:"notes" validate:"max=2000"`
	Status      *int   `json:"status" validate:"omitempty,status"`
}

type UpdateQuestionRequest struct {
	Question    *string `json:"question" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	Status      *int    `json:"status" validate:"omitempty,status"`
}

type CreateOptionRequest struct {
	Option string `json:"option" validate:"required,max=500"`
	Notes  string `json:"notes" validate:"max=2000"`
	Status *int   `json:"status" validate:"omitempty,status"`
}

type UpdateOptionRequest struct {
	Option *string `json:"option" validate:"omitempty,min=1,max=500"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
	Status *int    `json:"status" validate:"omitempty,status"`
}

// MoveRequest for POST …/move
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,direction"`
}

type SurveyResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        int       `json:"status"`
	StatusLabel   string    `json:"status_label"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func SurveyResponseFromEntity(s *Survey) SurveyResponse {
	return SurveyResponse{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description.String,
		Notes:         s.Notes.String,
		Status:        int(s.Status),
		StatusLabel:   s.Status.Label(false),
		QuestionCount: s.QuestionCount,
		CreatedAt:     s.CreatedAt,
	}
}

type QuestionResponse struct {
	ID          uuid.UUID `json:"id"`
	SurveyID    uuid.UUID `json:"survey_id"`
	Question    string    `json:"question"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Rank        int       `json:"rank"`
	Status      int       `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
}

func QuestionResponseFromEntity(q *Question) QuestionResponse {
	return QuestionResponse{
		ID:          q.ID,
		SurveyID:    q.SurveyID,
		Question:    q.Question,
		Description: q.Description.String,
		Notes:       q.Notes.String,
		Rank:        q.Rank,
		Status:      int(q.Status),
		StatusLabel: q.Status.Label(false),
		CreatedAt:   q.CreatedAt,
	}
}

type OptionResponse struct {
	ID          uuid.UUID `json:"id"`
	QuestionID  uuid.UUID `json:"question_id"`
	Option      string    `json:"option"`
	Notes       string    `json:"notes,omitempty"`
	Rank        int       `json:"rank"`
	Status      int       `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
}

func OptionResponseFromEntity(o *Option) OptionResponse {
	return OptionResponse{
		ID:          o.ID,
		QuestionID:  o.QuestionID,
		Option:      o.Option,
		Notes:       o.Notes.String,
		Rank:        o.Rank,
		Status:      int(o.Status),
		StatusLabel: o.Status.Label(false),
		CreatedAt:   o.CreatedAt,
	}
}

func statusOrDefault(v *int) status.Status {
	if v == nil {
		return status.Active
	}
	return status.Status(*v)
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
