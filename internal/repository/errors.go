package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidAttribute is returned when a filter or update names a
	// column outside of the users table.
	ErrInvalidAttribute = errors.New("invalid user attribute")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint.
	ErrDuplicate = errors.New("duplicate record")
)
