package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrNotFound      = errors.New("submission not found")
	ErrMissingFields = errors.New("all fields are required")
	ErrInvalidEmail  = errors.New("invalid email")
)
