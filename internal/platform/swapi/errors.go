package swapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for a 404 from the catalog. It marks an absent
	// resource and is not a transport failure.
	ErrNotFound = errors.New("resource not found")

	// ErrMissingField is returned when a referenced resource lacks the requested field.
	ErrMissingField = errors.New("missing field")
)

// StatusError is a non-2xx, non-404 catalog response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}
