package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates an update or delete targeted a row that does not
// exist. Reads signal absence with a nil result instead.
var ErrNotFound = errors.New("record not found")

// BackendError wraps any failure coming back from the backend store. The
// original message is always preserved and reachable via errors.Unwrap.
// Backend failures are never retried here.
type BackendError struct {
	Collection string
	Op         string
	Err        error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collection, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendErr(collection, op string, err error) *BackendError {
	return &BackendError{Collection: collection, Op: op, Err: err}
}
