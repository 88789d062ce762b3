package domain

import "errors"

// Error taxonomy. Usecases wrap these with %w and context; the HTTP layer
// maps them to status codes exactly once at the request boundary.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)
