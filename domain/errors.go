// Package domain holds the error kinds shared by every domain package.
// Packages wrap these with %w so callers can classify failures with errors.Is.
package domain

import "errors"

// Domain errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
