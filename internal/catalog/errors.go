package catalog

import "errors"

var (
	// ErrInvalidInput is returned when a required string is blank.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a title that does not resolve. Store operations report
	// it as a false result instead.
	ErrNotFound = errors.New("movie not found")
	// ErrConstraintViolation marks a rejected insert. Store operations report
	// it as a false result instead.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStorageUnavailable is the only storage failure surfaced as an error.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
