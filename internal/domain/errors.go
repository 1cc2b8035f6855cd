package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyPattern is returned when a permission has no URL pattern.
	ErrEmptyPattern = errors.New("permission pattern cannot be empty")

	ErrInvalidVerb = errors.New("invalid HTTP verb")

	// ErrInvalidPattern is returned for patterns the permission matcher
	// cannot interpret.
	ErrInvalidPattern = errors.New("invalid permission pattern")

	// ErrObjectInTrash is returned for objects that were moved to the trash.
	ErrObjectInTrash = errors.New("object has been deleted")

	ErrNonNumericRefID = errors.New("ref_id needs to be numeric")
)
