package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single-row fetch matches zero rows, or
	// when more than one row matched a unique filter.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert or update violates a uniqueness
	// guarantee (slug, email, username). Repositories wrap it with the
	// offending column for context.
	ErrConflict = errors.New("duplicate record")
)

// RemoteError wraps a failed remote table operation.
type RemoteError struct {
	Op     string // select, insert, update, delete
	Entity string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ValidationError rejects input before any remote call is made. Its message
// is user-facing.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
