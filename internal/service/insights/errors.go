package insights

import "errors"

// Sentinel errors for the insights service layer.
var (
	ErrNotFound = errors.New("campaign not found")
)

// ValidationError reports a rejected campaign definition. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
