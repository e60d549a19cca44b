package engine

import (
	"errors"
	"fmt"
)

// Error represents a rejected primitive call.
//
// Every precondition violation surfaces as an Error with a structured code
// so callers (the harness, the CLI) can classify it without string matching.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the primitive that rejected the call (e.g. "delay").
	Op string

	// Message is a human-readable description.
	Message string

	// Details contains additional context such as the offending argument.
	Details map[string]string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a non-positive rate or duration, an
	// empty sequence, an unknown wave function, or an unusable identifier.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidArgument returns true if the error is an invalid argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidArgument
	}
	return false
}

// NewInvalidArgumentError creates an Error for a rejected argument.
func NewInvalidArgumentError(op, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Op:      op,
		Message: message,
	}
}

// invalidArgument builds an invalid argument error that records which
// argument was rejected and its value.
func invalidArgument(op, arg string, value any, reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Op:      op,
		Message: fmt.Sprintf("%s %s, got %v", arg, reason, value),
		Details: map[string]string{
			"argument": arg,
			"value":    fmt.Sprintf("%v", value),
		},
	}
}
