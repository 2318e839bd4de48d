package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Store is one physical location of a customer. Its QR code encodes
// QRKey, which never changes after creation.
type Store struct {
	ID                 uuid.UUID      `db:"id"`
	CustomerID         uuid.UUID      `db:"customer_id"`
	Name               string         `db:"name"`
	LogoURL            sql.NullString `db:"logo_url"`
	SurveyCompleteHTML sql.NullString `db:"survey_complete_html"`
	RedirectURL        sql.NullString `db:"redirect_url"`
	QRKey              string         `db:"qr_key"`
	SurveyID           uuid.NullUUID  `db:"survey_id"`
	Status             status.Status  `db:"status"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}
