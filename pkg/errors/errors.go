// Package errors defines the coded errors kitforge surfaces to users.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a stable error code for programmatic handling.
type Code string

const (
	CodeInvalidName             Code = "invalid_name"
	CodeReservedName            Code = "reserved_name"
	CodeUntrackedConflict       Code = "untracked_conflict"
	CodeAlreadyExists           Code = "already_exists"
	CodeAmbiguousTarget         Code = "ambiguous_target"
	CodeNotFound                Code = "not_found"
	CodeTemplateNotFound        Code = "template_not_found"
	CodeExternalToolUnavailable Code = "external_tool_unavailable"
	CodeInvalidArgument         Code = "invalid_argument"
	CodeInternal                Code = "internal"
)

// AppError carries a code, a message, an optional remedy hint, and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Hint    string
	Err     error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// WithHint attaches a suggested remedy shown to the user.
func (e *AppError) WithHint(format string, args ...any) *AppError {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// WithMeta attaches metadata to the error.
func (e *AppError) WithMeta(k string, v any) *AppError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[k] = v
	return e
}

// New creates a new AppError with code and a formatted message.
func New(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with code and message.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, "%s", message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode checks if an error has the provided code (through unwrapping).
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// HintOf returns the remedy hint of the first AppError in err's chain.
func HintOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Hint
	}
	return ""
}
