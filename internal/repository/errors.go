package repository

import "errors"

var (
	// ErrDuplicateEmail is returned when an insert would violate the
	// one-user-per-email invariant.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound is returned when a record does not exist or is not
	// visible to the requesting owner.
	ErrNotFound = errors.New("record not found")
)
