package client

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument means a required argument was missing or malformed.
// It is returned before any network I/O happens.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidResponse means the server answered 2xx but the body was not the
// JSON shape the operation requires.
var ErrInvalidResponse = errors.New("invalid response")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
