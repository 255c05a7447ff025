package search

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested document doesn't exist in the index
var ErrNotFound = errors.New("document not found")

// BackendError represents a failed call to the search backend. It is the
// caller's failure too: deployment-record durability depends on it.
type BackendError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search backend %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("search backend %s failed: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
