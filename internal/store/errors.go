package store

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a write would violate the
	// case-insensitive uniqueness constraint on employee email. It is produced
	// both by the application-level pre-check and by the database constraint
	// itself, so a race that slips past the pre-check still maps to Conflict.
	ErrDuplicateEmail = errors.New("duplicate email")
)
