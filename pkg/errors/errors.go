package errors

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailExists          = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("admin access required")
	ErrEventNotFound        = errors.New("event not found")
	ErrPhotoNotFound        = errors.New("photo not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrAlreadyPurchased     = errors.New("photo already purchased")
	ErrNotPurchased         = errors.New("photo not purchased")
	ErrUnknownSession       = errors.New("unknown checkout session")
	ErrCallbackAuthenticity = errors.New("callback verification failed")
	ErrInvalidResolution    = errors.New("invalid resolution")
	ErrNilTransaction       = errors.New("transaction is nil")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
)
