package domain

import "errors"

var (
	// ErrValidation marks invalid caller input or an invalid entity state.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation rejected because of the entity's current state.
	ErrConflict = errors.New("conflict")
	// ErrNotConfigured marks a supplier without a usable PharmaML configuration.
	ErrNotConfigured = errors.New("supplier is not configured for pharmaml")
)
