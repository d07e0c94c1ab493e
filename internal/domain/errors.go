package domain

import "errors"

// Sentinel errors for the storage and service layers. Handlers map these to
// HTTP status codes; services wrap them with fmt.Errorf("...: %w", err) to
// add context without losing the category.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrCartNotFound    = errors.New("cart not found")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrAlreadyPaid       = errors.New("order already paid")
	ErrValidationFailed  = errors.New("validation failed")
	ErrSignatureInvalid  = errors.New("webhook signature invalid")
	ErrUpstreamFailure   = errors.New("payment processor unavailable")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
