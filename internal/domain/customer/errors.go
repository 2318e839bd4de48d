package customer

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerInactive = errors.New("customer is not active")
	ErrLoginNotCreated  = errors.New("customer created but login could not be created")
)
