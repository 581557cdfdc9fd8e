package service

import "errors"

// Shared error taxonomy. Handlers map these onto HTTP statuses; anything
// else is treated as a backend failure (5xx), logged, and never retried
// automatically.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)
