// Package status holds the lifecycle flag shared by customers, stores,
// surveys, questions, options and transactions.
package status

import (
	"errors"
	"fmt"
)

// Status is stored as a SMALLINT. Deleted rows are never removed.
type Status int

const (
	Active  Status = 1
	Paused  Status = 0
	Deleted Status = -1

	// OnHold is the customer-facing name for Paused.
	OnHold = Paused
)

var ErrInvalidStatus = errors.New("status must be 1, 0 or -1")

// Parse converts a raw column or request value into a Status.
func Parse(v int) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidStatus, v)
	}
	return s, nil
}

func (s Status) Valid() bool {
	return s == Active || s == Paused || s == Deleted
}

// IsActive is the single gate for public rendering, survey assignment,
// customer logins and balance inclusion.
func (s Status) IsActive() bool {
	return s == Active
}

// VisibleForAuthoring reports whether the owner still sees the row in
// editing lists. Paused rows stay editable; deleted rows are hidden.
func (s Status) VisibleForAuthoring() bool {
	return s.Valid() && s != Deleted
}

// Label returns the display name. Customers say "On Hold" where other
// entities say "Paused".
func (s Status) Label(customer bool) string {
	switch s {
	case Active:
		return "Active"
	case Paused:
		if customer {
			return "On Hold"
		}
		return "Paused"
	case Deleted:
		return "Deleted"
	}
	return "Unknown"
}

func (s Status) String() string {
	return s.Label(false)
}

// SQL fragments used by repositories so the comparison lives in one place.
const (
	ActiveClause     = "status = 1"
	NotDeletedClause = "status <> -1"
)
