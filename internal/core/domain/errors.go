package domain

import "errors"

// Generic failures shared by every aggregate. Entity-specific sentinels live
// next to their types.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("access forbidden")
	ErrConflict     = errors.New("conflict")
)
