package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a looked up resource does not exist.
var ErrNotFound = errors.New("not found")

// UnexpectedResponseError is returned when the server answers with a status
// code other than the one expected for the operation.
type UnexpectedResponseError struct {
	// Operation describes what the client attempted, e.g. "create media scan".
	Operation string
	// StatusCode is the received HTTP status.
	StatusCode int
	// Expected is the status the operation expects.
	Expected int
	// Body is the raw response body.
	Body string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("could not %s: received unexpected HTTP %d response from the server (expected HTTP %d): %s",
		e.Operation, e.StatusCode, e.Expected, strings.TrimSpace(e.Body))
}

// IsStatus reports whether err is an unexpected response with the given status code.
func IsStatus(err error, code int) bool {
	var re *UnexpectedResponseError
	return errors.As(err, &re) && re.StatusCode == code
}
