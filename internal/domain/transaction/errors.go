package transaction

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be a number")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrStoreNotOwned       = errors.New("store does not belong to this customer")
)
