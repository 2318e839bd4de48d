package completion

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository stores survey responses
type Repository interface {
	CreateBatch(ctx context.Context, rows []Response) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates survey response repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateBatch inserts every row in one statement.
func (r *repository) CreateBatch(ctx context.Context, rows []Response) error {
	if len(rows) == 0 {
		return nil
	}
	query := `
		INSERT INTO survey_responses (
			id, response_id, store_id, survey_id, survey_question_id, survey_option_id,
			response_option, ip_address, transaction_id, submitted_at
		) VALUES (
			:id, :response_id, :store_id, :survey_id, :survey_question_id, :survey_option_id,
			:response_option, :ip_address, :transaction_id, :submitted_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, rows)
	return err
}
