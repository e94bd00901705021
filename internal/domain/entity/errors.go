package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork transport-level failure talking to a remote service
	ErrNetwork = errors.New("network failure")
	// ErrHTTP non-2xx response, see HTTPError
	ErrHTTP = errors.New("http error")
	// ErrParse malformed payload or shape mismatch
	ErrParse = errors.New("parse failure")
	// ErrStorageCorrupt persisted payload could not be decoded
	ErrStorageCorrupt = errors.New("storage corruption")
	// ErrValidation caller passed an out-of-range argument
	ErrValidation = errors.New("validation error")
	// ErrNotFound requested key or record does not exist
	ErrNotFound = errors.New("not found")
	// ErrNoDevice no printer is selected or discovered
	ErrNoDevice = errors.New("no device selected")
)

// HTTPError non-success HTTP status carrying the status text
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Status)
}

// Unwrap lets errors.Is(err, ErrHTTP) match
func (e *HTTPError) Unwrap() error {
	return ErrHTTP
}
