package completion

import (
	"time"

	"github.com/google/uuid"
)

// Response is one answered question of a completed survey. All rows of a
// submission share ResponseID and TransactionID.
type Response struct {
	ID             uuid.UUID `db:"id"`
	ResponseID     uuid.UUID `db:"response_id"`
	StoreID        uuid.UUID `db:"store_id"`
	SurveyID       uuid.UUID `db:"survey_id"`
	QuestionID     uuid.UUID `db:"survey_question_id"`
	OptionID       uuid.UUID `db:"survey_option_id"`
	ResponseOption string    `db:"response_option"`
	IPAddress      string    `db:"ip_address"`
	TransactionID  uuid.UUID `db:"transaction_id"`
	SubmittedAt    time.Time `db:"submitted_at"`
}
