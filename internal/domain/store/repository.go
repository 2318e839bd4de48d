package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/pkg/database"
)

// Repository defines store data access
type Repository interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)
	GetByQRKey(ctx context.Context, qrKey string) (*Store, error)
	Create(ctx context.Context, s *Store) error
	Update(ctx context.Context, s *Store) error
	SetSurvey(ctx context.Context, id uuid.UUID, surveyID uuid.NullUUID) error
	SetLogo(ctx context.Context, id uuid.UUID, url string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates store repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `
	id, customer_id, name, logo_url, survey_complete_html, redirect_url,
	qr_key, survey_id, status, created_at, updated_at
`

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Store, error) {
	query := `SELECT ` + columns + ` FROM stores
		WHERE customer_id = $1 AND ` + status.NotDeletedClause + `
		ORDER BY name ASC`

	var out []*Store
	if err := r.db.SelectContext(ctx, &out, query, customerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM stores WHERE id = $1`, id)
}

func (r *repository) GetByQRKey(ctx context.Context, qrKey string) (*Store, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM stores WHERE qr_key = $1`, qrKey)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Store, error) {
	var s Store
	if err := r.db.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, s *Store) error {
	query := `
		INSERT INTO stores (` + columns + `)
		VALUES (:id, :customer_id, :name, :logo_url, :survey_complete_html, :redirect_url,
			:qr_key, :survey_id, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, s)
	if database.IsUniqueViolation(err, "stores_qr_key_key") {
		return errQRKeyTaken
	}
	return err
}

func (r *repository) Update(ctx context.Context, s *Store) error {
	query := `
		UPDATE stores
		SET name = :name, logo_url = :logo_url, survey_complete_html = :survey_complete_html,
			redirect_url = :redirect_url, status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *repository) SetSurvey(ctx context.Context, id uuid.UUID, surveyID uuid.NullUUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE stores SET survey_id = $2, updated_at = NOW() WHERE id = $1`, id, surveyID)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *repository) SetLogo(ctx context.Context, id uuid.UUID, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE stores SET logo_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStoreNotFound
	}
	return nil
}
