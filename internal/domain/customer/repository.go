package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines customer data access
type Repository interface {
	List(ctx context.Context, includeDeleted bool) ([]*ListItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	LinkUser(ctx context.Context, id, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

const customerColumns = `
	c.id, c.name, c.contact_name, c.phone, c.email, c.stripe_pm_key,
	c.status, c.user_id, c.created_at, c.updated_at
`

// NewRepository creates customer repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, includeDeleted bool) ([]*ListItem, error) {
	query := `
		SELECT ` + customerColumns + `,
			(SELECT COUNT(*) FROM stores s WHERE s.customer_id = c.id AND s.status <> -1) AS store_count
		FROM customers c
		WHERE $1 OR c.status <> -1
		ORDER BY c.created_at DESC
	`

	var items []*ListItem
	if err := r.db.SelectContext(ctx, &items, query, includeDeleted); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (id, name, contact_name, phone, email, stripe_pm_key, status, user_id, created_at, updated_at)
		VALUES (:id, :name, :contact_name, :phone, :email, :stripe_pm_key, :status, :user_id, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE customers SET
			name = :name, contact_name = :contact_name, phone = :phone, email = :email,
			stripe_pm_key = :stripe_pm_key, status = :status, user_id = :user_id, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *repository) LinkUser(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE customers SET user_id = $2, updated_at = NOW() WHERE id = $1`, id, userID)
	return err
}
