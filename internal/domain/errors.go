package domain

import "errors"

var (
	// ErrColumnNotFound is returned when an operation names a column the table lacks.
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidSchema is returned when a loaded table does not match the expected layout.
	ErrInvalidSchema = errors.New("invalid table schema")
)
