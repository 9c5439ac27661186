package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyBasket indicates a checkout was attempted on a basket with no items.
	ErrEmptyBasket = errors.New("basket has no items")
	// ErrInvalidTransition indicates an order status change that the status
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyExists indicates a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid indicates input that fails domain validation.
	ErrInvalid = errors.New("invalid input")
)
