package customer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Customer is a tenant: the business that owns stores and surveys.
// Its balance is derived from transactions and never stored here.
type Customer struct {
	ID               uuid.UUID      `db:"id"`
	Name             string         `db:"name"`
	ContactName      string         `db:"contact_name"`
	Phone            string         `db:"phone"`
	Email            sql.NullString `db:"email"`
	PaymentMethodKey sql.NullString `db:"stripe_pm_key"`
	Status           status.Status  `db:"status"`
	UserID           uuid.NullUUID  `db:"user_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// CanUsePublicFlow gates every survey served from this customer's stores.
func (c *Customer) CanUsePublicFlow() bool {
	return c.Status.IsActive()
}

// CanLogIn gates the store panel.
func (c *Customer) CanLogIn() bool {
	return c.Status.IsActive()
}

// ListItem is a customer row with its non-deleted store count.
type ListItem struct {
	Customer
	StoreCount int `db:"store_count"`
}
