package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/qrsurvey/qrs-api/internal/pkg/database"
)

const emailUniqueIndex = "auth_users_email_key"

// Repository defines auth user data access
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata types.JSONText) error
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *sqlx.DB
}

const userColumns = `
	id, email, password_hash, email_confirmed_at, metadata,
	is_super_admin, customer_id, created_at, updated_at
`

// NewRepository creates auth user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO auth_users (` + userColumns + `)
		VALUES (:id, :email, :password_hash, :email_confirmed_at, :metadata,
			:is_super_admin, :customer_id, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		if database.IsUniqueViolation(err, emailUniqueIndex) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM auth_users WHERE id = $1`, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM auth_users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	if err := r.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	err := r.exec(ctx, `UPDATE auth_users SET email = $2, updated_at = NOW() WHERE id = $1`, id, email)
	if database.IsUniqueViolation(err, emailUniqueIndex) {
		return ErrEmailTaken
	}
	return err
}

func (r *repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, `UPDATE auth_users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (r *repository) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata types.JSONText) error {
	return r.exec(ctx, `UPDATE auth_users SET metadata = $2, updated_at = NOW() WHERE id = $1`, id, metadata)
}

func (r *repository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, `UPDATE auth_users SET email_confirmed_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
}

func (r *repository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
