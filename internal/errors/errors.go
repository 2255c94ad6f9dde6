package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Sportify auth client
var (
	// Local, pre-network errors
	ErrValidation = errors.New("validation failed")

	// Authentication errors
	ErrAuthentication = errors.New("authentication failed")
	ErrRoleMismatch   = errors.New("account role does not match")
	ErrNotVerified    = errors.New("account is not verified")
	ErrInvalidToken   = errors.New("invalid token")

	// Transport errors
	ErrTransport = errors.New("network request failed")

	// Session errors
	ErrSessionInvalid    = errors.New("session invalid")
	ErrIncompleteSession = errors.New("session is incomplete")
	ErrCorrupt           = errors.New("persisted session is corrupt")

	// Step-up errors
	ErrStepUpInactive  = errors.New("no second factor verification in progress")
	ErrStepUpCancelled = errors.New("second factor verification cancelled")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// MessageError is an error whose text can be shown to the user as is. Kind
// is the sentinel it belongs to, so errors.Is still classifies it.
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Kind
}

// WithMessage returns a MessageError of the given kind.
func WithMessage(kind error, message string) error {
	return &MessageError{Kind: kind, Message: message}
}

// UserMessage returns the user facing message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var msgErr *MessageError
	if errors.As(err, &msgErr) && msgErr.Message != "" {
		return msgErr.Message
	}
	return fallback
}
