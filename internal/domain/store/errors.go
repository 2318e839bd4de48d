package store

import "errors"

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrQRKeyConflict      = errors.New("could not allocate a unique qr key")
	ErrSurveyNotAvailable = errors.New("survey is not active or belongs to another customer")
	ErrLogoUploadDisabled = errors.New("logo storage is not configured")
	ErrInvalidLogo        = errors.New("logo must be a JPEG, PNG or GIF image")

	errQRKeyTaken = errors.New("qr key taken")
)
