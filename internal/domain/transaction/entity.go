package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
)

// Type is the numeric transaction code stored in transaction_type.
type Type int

const (
	TypeSurveyCompletion Type = 11
	TypeReload           Type = 101
	TypeCredit           Type = 102
)

func (t Type) Label() string {
	switch t {
	case TypeCredit:
		return "Credit"
	case TypeReload:
		return "Reload"
	case TypeSurveyCompletion:
		return "User Action"
	}
	return "Unknown"
}

// Mediums a transaction can originate from.
const (
	MediumStripe = "stripe"
	MediumWeb    = "web"
	MediumMobile = "mobile"
	MediumPOS    = "pos"
	MediumOther  = "other"
)

const DefaultCurrency = "USD"

// CompletionAmount is debited from the customer for every completed survey.
var CompletionAmount = decimal.NewFromInt(-1)

// Transaction is a signed balance movement for a customer.
type Transaction struct {
	ID         uuid.UUID       `db:"id"`
	CustomerID uuid.UUID       `db:"customer_id"`
	StoreID    uuid.NullUUID   `db:"store_id"`
	Type       Type            `db:"transaction_type"`
	Medium     string          `db:"medium"`
	Details    sql.NullString  `db:"details"`
	Currency   string          `db:"currency"`
	Amount     decimal.Decimal `db:"amount"`
	Status     status.Status   `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
}

// CountsTowardBalance reports whether the amount is part of the balance.
func (t *Transaction) CountsTowardBalance() bool {
	return t.Status.IsActive()
}

// SumBalance adds up the amounts that count toward the balance. The
// repository computes the same sum in SQL.
func SumBalance(txs []*Transaction) decimal.Decimal {
	return lo.Reduce(txs, func(sum decimal.Decimal, t *Transaction, _ int) decimal.Decimal {
		if !t.CountsTowardBalance() {
			return sum
		}
		return sum.Add(t.Amount)
	}, decimal.Zero)
}
