package store

import (
	"time"

	"github.com/google/uuid"
)

// CreateStoreRequest for POST /api/admin/customers/{customerID}/stores
type CreateStoreRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	LogoURL            string `json:"logo_url" validate:"omitempty,url"`
	SurveyCompleteHTML string `json:"survey_complete_html" validate:"max=20000"`
	RedirectURL        string `json:"redirect_url" validate:"omitempty,url"`
	Status             *int   `json:"status" validate:"omitempty,status"`
}

// UpdateStoreRequest for PATCH /api/admin/customers/{customerID}/stores/{storeID}.
// qr_key is not editable.
type UpdateStoreRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=1,max=200"`
	LogoURL            *string `json:"logo_url" validate:"omitempty,max=2000"`
	SurveyCompleteHTML *string `json:"survey_complete_html" validate:"omitempty,max=20000"`
	RedirectURL        *string `json:"redirect_url" validate:"omitempty,max=2000"`
	Status             *int    `json:"status" validate:"omitempty,status"`
}

// AssignSurveyRequest for PUT /api/v1/store/locations/{storeID}/survey.
// A null survey_id clears the assignment.
type AssignSurveyRequest struct {
	SurveyID *string `json:"survey_id" validate:"omitempty,uuid"`
}

type StoreResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	Name               string     `json:"name"`
	LogoURL            string     `json:"logo_url,omitempty"`
	SurveyCompleteHTML string     `json:"survey_complete_html,omitempty"`
	RedirectURL        string     `json:"redirect_url,omitempty"`
	QRKey              string     `json:"qr_key"`
	PublicURL          string     `json:"public_url"`
	SurveyID           *uuid.UUID `json:"survey_id"`
	Status             int        `json:"status"`
	StatusLabel        string     `json:"status_label"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func StoreResponseFromEntity(s *Store, publicBaseURL string) StoreResponse {
	resp := StoreResponse{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		Name:               s.Name,
		LogoURL:            s.LogoURL.String,
		SurveyCompleteHTML: s.SurveyCompleteHTML.String,
		RedirectURL:        s.RedirectURL.String,
		QRKey:              s.QRKey,
		PublicURL:          publicBaseURL + "/s/" + s.QRKey,
		Status:             int(s.Status),
		StatusLabel:        s.Status.Label(false),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.SurveyID.Valid {
		id := s.SurveyID.UUID
		resp.SurveyID = &id
	}
	return resp
}
