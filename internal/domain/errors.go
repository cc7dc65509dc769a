// File: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeConflict     ErrorType = "CONFLICT"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeUpstream     ErrorType = "UPSTREAM"
	ErrTypeInternal     ErrorType = "INTERNAL"
)

// AppError is the error every service returns to the HTTP layer.
// Message is safe to show to callers.
type AppError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewNotFoundError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

func NewConflictError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeConflict, Operation: operation, Message: msg}
}

func NewUnauthorizedError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeUnauthorized, Operation: operation, Message: msg}
}

func NewValidationError(operation, msg string) *AppError {
	return &AppError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewUpstreamError surfaces the provider's own error text to the caller.
func NewUpstreamError(operation string, cause error) *AppError {
	msg := "upstream provider failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &AppError{Type: ErrTypeUpstream, Operation: operation, Message: msg, Cause: cause}
}

func NewInternalError(operation, msg string, cause error) *AppError {
	return &AppError{Type: ErrTypeInternal, Operation: operation, Message: msg, Cause: cause}
}

// TypeOf returns the AppError type in err's chain, or ErrTypeInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeInternal
}
