package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("email must contain @")
	ErrCustomerRequired   = errors.New("customer_id is required unless the user is a super admin")
	ErrInvalidMetadata    = errors.New("metadata must be valid JSON")

	ErrNotSuperAdmin     = errors.New("admin access required")
	ErrAdminOnStoreLogin = errors.New("admins must use the admin login")
	ErrNoLinkedCustomer  = errors.New("no customer linked to this account")
	ErrCustomerInactive  = errors.New("customer account is not active")
)
