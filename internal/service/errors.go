package service

import (
	"fmt"

	"github.com/conectasus/referral-management-api/internal/models"
)

// NotFoundError indicates the referenced request does not exist.
type NotFoundError struct {
	RequestID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %d not found", e.RequestID)
}

// ValidationError indicates the caller supplied invalid or incomplete input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TransitionError indicates the requested status change is not an edge of the
// request state machine.
type TransitionError struct {
	From models.RequestStatus
	To   models.RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: %s -> %s", e.From, e.To)
}

// StorageError wraps a database failure. The underlying error is preserved
// for logging; callers surface it as an internal failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
