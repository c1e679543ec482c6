// Package domainerrors defines coded errors that services return and transports translate.
//
// Stores return sentinel infrastructure facts (pkg/platform/sentinel); services wrap them into
// an *Error carrying a Code so the HTTP layer can map them without inspecting messages.
package domainerrors

import (
	"errors"
)

// Code classifies a failure for callers and transports.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"

	// Onboarding failure classes.
	CodeStore              Code = "store_error"
	CodeInvalidRecipient   Code = "invalid_recipient"
	CodeMessageTooLong     Code = "message_too_long"
	CodeNotificationFailed Code = "notification_failed"
	CodeCompensationFailed Code = "compensation_failed"
)

// Error is a coded domain error. Message is safe to show to the caller.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and caller-facing message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in err's chain, or CodeInternal
// when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}
