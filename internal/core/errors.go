package core

import "errors"

// ValidationError reports a request that is missing or carries malformed
// fields. Msg is safe to return to the caller verbatim.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ErrNotFound is the root of every not-found condition.
var ErrNotFound = errors.New("not found")

var (
	ErrCompanyNotFound = &notFoundError{msg: "Company not found"}
	ErrEntryNotFound   = &notFoundError{msg: "Entry not found"}
)

var (
	ErrNameRequired       = NewValidationError("Name is required")
	ErrMissingEntryFields = NewValidationError("Category and amount are required")
	ErrInvalidAmount      = NewValidationError("Amount must be a valid number")
	ErrInvalidDate        = NewValidationError("Date must be YYYY-MM-DD or RFC 3339")
)

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is any not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
