package sheets

import (
	"errors"
	"fmt"
)

// ErrAuth marks 401/403 responses: a rejected or under-privileged
// credential rather than a data problem. Callers should log the two cases
// differently even when the user-facing message is the same.
var ErrAuth = errors.New("sheets: authorization rejected")

// APIError is a non-2xx Sheets API response that is not an auth failure.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets API status %d: %s", e.StatusCode, e.Message)
}
