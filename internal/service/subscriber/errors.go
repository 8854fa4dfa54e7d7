package subscriber

import "errors"

// Sentinel errors for the subscriber service layer.
var (
	ErrInvalidEmail   = errors.New("invalid email")
	ErrPDFUnavailable = errors.New("subscription pdf not available")
	ErrSendFailed     = errors.New("welcome email failed")
)
