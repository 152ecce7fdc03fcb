package errors

import (
	"fmt"
)

var (
	// ErrValidation is returned for missing or malformed request fields
	ErrValidation = fmt.Errorf("validation error")

	// ErrNotFound covers unknown job ids and result files missing from disk
	ErrNotFound = fmt.Errorf("not found")

	// ErrInvalidState is returned when an operation isn't valid for a job's current status
	ErrInvalidState = fmt.Errorf("invalid state")

	// ErrExternalService wraps archive client & credential failures
	ErrExternalService = fmt.Errorf("external service error")

	ErrParse        = fmt.Errorf("parse error")
	ErrExtraction   = fmt.Errorf("extraction error")
	ErrNotSupported = fmt.Errorf("not supported")
)

// Missing returns the validation error for an absent required field.
func Missing(field string) error {
	return fmt.Errorf("%w: Missing required field: %s", ErrValidation, field)
}

// Message returns the text of err with any leading sentinel prefix removed,
// so callers see "Missing required field: area" rather than "validation error: ...".
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, s := range []error{ErrValidation, ErrNotFound, ErrInvalidState, ErrExternalService, ErrParse, ErrExtraction, ErrNotSupported} {
		prefix := s.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
