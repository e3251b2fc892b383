// Package errors provides domain-specific error types for chuck-hq.
//
// Errors carry a code so the HTTP layer and the commands can react to a
// category of failure without matching on message text.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeStorage indicates a data file could not be read or written.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"

	// ErrCodeNotFound indicates an item id that does not exist in a collection.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeBind indicates the HTTP listener could not be bound.
	ErrCodeBind ErrorCode = "BIND_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrCodeInternal
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewStorageError creates a new data file error.
func NewStorageError(message string, cause error) *Error {
	return Wrap(ErrCodeStorage, message, cause)
}

// NewNotFoundError creates a new not-found error for an item id.
func NewNotFoundError(resource, id string) *Error {
	return New(ErrCodeNotFound, fmt.Sprintf("%s item %q not found", resource, id))
}

// NewBindError creates a new listener bind error.
func NewBindError(message string, cause error) *Error {
	return Wrap(ErrCodeBind, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}
