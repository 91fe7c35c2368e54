package errors

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. TransientExternal covers rewrite/publish/notify
// failures and timeouts; the owning stage is abandoned for the cycle and
// retried on the next tick.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTransientExternal = errors.New("transient external failure")
	ErrNoUniqueContent   = errors.New("no unique content")
	ErrAlreadyQueued     = errors.New("item already queued for channel")
	ErrAlreadyHandled    = errors.New("item already in a terminal state")
	ErrClaimLost         = errors.New("claim lost to another worker")
)

// Error is a wrapped error with an optional machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with an additional message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// WrapWithCode wraps an error with a code and message.
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Transient marks err as a TransientExternal outcome, keeping the
// original error in the chain.
func Transient(err error, stage string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", stage, ErrTransientExternal, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient returns true if the error is a transient external failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientExternal)
}
