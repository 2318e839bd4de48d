package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Repository defines transaction data access
type Repository interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Create(ctx context.Context, t *Transaction) error
	UpdateStatus(ctx context.Context, id uuid.UUID, s status.Status) error
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates transaction repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const columns = `id, customer_id, store_id, transaction_type, medium, details, currency, amount, status, created_at`

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error) {
	query := `SELECT ` + columns + ` FROM transactions WHERE customer_id = $1 ORDER BY created_at DESC`

	var out []*Transaction
	if err := r.db.SelectContext(ctx, &out, query, customerID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	if err := r.db.GetContext(ctx, &t, `SELECT `+columns+` FROM transactions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (` + columns + `)
		VALUES (:id, :customer_id, :store_id, :transaction_type, :medium, :details, :currency, :amount, :status, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, t)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, s status.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = $2 WHERE id = $1`, id, int(s))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// Balance sums the customer's active transactions in the database.
func (r *repository) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE customer_id = $1 AND ` + status.ActiveClause

	var sum decimal.Decimal
	if err := r.db.GetContext(ctx, &sum, query, customerID); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
