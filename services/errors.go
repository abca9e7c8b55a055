package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("you do not have permission")
	ErrConflict        = errors.New("conflict")
	ErrNotEligible     = errors.New("not eligible")
	ErrFeatureDisabled = errors.New("feature disabled")
)

// ValidationError is a client-side input failure. Message is shown as is.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// kindError carries a user-facing message while matching one of the
// sentinel errors above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// notFound maps gorm's missing-row error to ErrNotFound and wraps the rest.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s not found", what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
