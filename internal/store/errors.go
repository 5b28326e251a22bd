package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested row does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a unique key collision, e.g. creating a row whose id is taken.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference indicates a foreign key points at a missing row.
	ErrInvalidReference = errors.New("referenced resource not found")
)
