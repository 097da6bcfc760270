package database

import "errors"

var (
	// ErrNotFound is returned when a required lookup matches no rows.
	ErrNotFound = errors.New("database: not found")

	// ErrCorrupted is returned when a uniqueness invariant is violated,
	// for example two user rows sharing a unique ID. This indicates a
	// store integrity bug and must never be swallowed.
	ErrCorrupted = errors.New("database: corrupted state")

	// ErrInvalidArgument is returned for malformed input, such as a
	// negative increment amount. No mutation is attempted.
	ErrInvalidArgument = errors.New("database: invalid argument")
)
