package auth

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// User is a login for either the admin console (IsSuperAdmin) or a
// customer's store panel (CustomerID).
type User struct {
	ID               uuid.UUID      `db:"id"`
	Email            string         `db:"email"`
	PasswordHash     string         `db:"password_hash"`
	EmailConfirmedAt sql.NullTime   `db:"email_confirmed_at"`
	Metadata         types.JSONText `db:"metadata"`
	IsSuperAdmin     bool           `db:"is_super_admin"`
	CustomerID       uuid.NullUUID  `db:"customer_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// LinkedCustomerID returns the customer this login administers. The
// customer_id column wins; older accounts carry it in metadata instead.
func (u *User) LinkedCustomerID() (uuid.UUID, bool) {
	if u.CustomerID.Valid {
		return u.CustomerID.UUID, true
	}

	var meta struct {
		CustomerID string `json:"customer_id"`
	}
	if len(u.Metadata) == 0 || json.Unmarshal(u.Metadata, &meta) != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(meta.CustomerID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
