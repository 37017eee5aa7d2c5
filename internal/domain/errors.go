package domain

import "errors"

var (
	ErrNotFound         = errors.New("job not found")
	ErrCapacityExceeded = errors.New("too many concurrent jobs")
	ErrDuplicateJob     = errors.New("duplicate job id")
)

// ValidationError describes a rejected generation request. It is always
// recoverable by the caller resubmitting corrected input and is never
// logged as a system fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
