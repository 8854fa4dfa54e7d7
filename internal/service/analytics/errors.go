package analytics

import "errors"

// ErrInvalidPayload is returned when a tracked event lacks path or session id.
var ErrInvalidPayload = errors.New("invalid payload")
