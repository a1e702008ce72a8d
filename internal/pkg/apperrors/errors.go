package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	ErrConflict = errors.New("resource conflict")

	// ErrConcurrencyConflict is returned when a second active loan request is
	// created for a borrower/lender pair. It is never retried.
	ErrConcurrencyConflict = errors.New("an active loan request already exists for this lender")

	ErrInvalidTransition = errors.New("invalid loan request status transition")

	// ErrEvidenceUnavailable marks a whole document category as missing. It degrades
	// the financial summary and never blocks matching.
	ErrEvidenceUnavailable = errors.New("evidence unavailable")

	ErrProviderExhausted = errors.New("all extraction providers failed")

	// ErrPersistence is fatal to the analyze call that produced it. No partial
	// snapshot is written.
	ErrPersistence = errors.New("failed to persist analysis snapshot")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {

	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

func WrapPersistenceError(cause error, message string) error {
	return &AppError{
		Code:    "PERSISTENCE_FAILURE",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrPersistence, cause),
	}
}
