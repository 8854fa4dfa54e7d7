package content

import "errors"

// Sentinel errors for the content service layer.
var (
	ErrNotFound = errors.New("content item not found")
)

// ValidationError reports a rejected item. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
