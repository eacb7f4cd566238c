package model

import "errors"

// Error kinds surfaced to callers. Wrap them with fmt.Errorf("%w: ...") and
// test with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)
