package custom_error

import (
	"errors"
	"fmt"
)

// ValidationError marks a rejected request field, e.g. an empty to_loc.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

// NotFoundError signals that no record matched. Callers are expected to treat
// it as a normal outcome, not an abnormal one.
type NotFoundError struct {
	message string
}

func (e *NotFoundError) Error() string {
	return e.message
}

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a connection or query failure. It is fatal for the
// operation and is never converted into an empty result.
type StorageError struct {
	message string
	cause   error
}

func (e *StorageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *StorageError) Unwrap() error {
	return e.cause
}

func WrapStorageError(message string, cause error) *StorageError {
	return &StorageError{message: message, cause: cause}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
