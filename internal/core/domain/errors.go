package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Scan errors (request-level, never recorded as scan events)
var (
	ErrInvalidQR       = errors.New("invalid QR code")
	ErrStudentNotFound = errors.New("student not found")
	ErrNoActiveMeal    = errors.New("no meal service active")
)

// Rotation errors
var (
	ErrQRConflict = errors.New("concurrent QR rotation conflict")
)
