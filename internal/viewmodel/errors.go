package viewmodel

import (
	"errors"
	"fmt"

	"github.com/DanePascual/studyhall/pkg/client"
)

// Error taxonomy for view-model operations. Local rejections (permission,
// missing identifier, declined confirmation, in-flight duplicate) happen
// before any network call.
var (
	ErrMissingIdentifier    = errors.New("missing resource identifier")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAuthRequired         = errors.New("authentication required")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrMutationInFlight     = errors.New("mutation already in flight")
)

// FetchError means loading a resource failed. Status carries the HTTP code
// when one was available, 0 otherwise.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch failed (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// fetchError wraps a client error for a failed resource load, mapping 401
// onto ErrAuthRequired so callers can force re-login.
func fetchError(err error) error {
	status := client.StatusOf(err)
	if status == 401 {
		return &FetchError{Status: status, Err: fmt.Errorf("%w: %w", ErrAuthRequired, err)}
	}
	return &FetchError{Status: status, Err: err}
}

// userMessage extracts the text worth showing in a notification, preferring
// the structured server-provided message over transport noise.
func userMessage(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}
