package utils

import "errors"

// ErrorRecordNotFound is the sentinel for expected "not found" lookups, so
// callers can branch on it instead of string-matching error messages.
var ErrorRecordNotFound = errors.New("record not found")

// ValidationError marks failures caused by caller input (missing field,
// unresolvable group/schedule name). The underlying write is never attempted
// for these. Anything that is neither a ValidationError nor
// ErrorRecordNotFound is treated as a system-of-record failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
