package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a bad or unknown input value
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unresolved id, or a row not owned by the actor
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// NewNotFoundError builds a NotFoundError with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation rejected because of the record's
// current lifecycle state
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// NewInvalidStateError builds an InvalidStateError with a formatted message
func NewInvalidStateError(format string, args ...interface{}) error {
	return &InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidState reports whether err is an InvalidStateError
func IsInvalidState(err error) bool {
	var is *InvalidStateError
	return errors.As(err, &is)
}
