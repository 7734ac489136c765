// Package errors provides application-level error types shared across the bot.
// Persistence and gateway failures are wrapped here and translated into
// user-facing responses at the handler boundary.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation_error"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeForbidden   ErrorType = "forbidden"
	ErrorTypeInternal    ErrorType = "internal_error"
	ErrorTypeUnavailable ErrorType = "unavailable"
)

// AppError carries an error classification plus a user-presentable message.
type AppError struct {
	Type    ErrorType
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newError(t ErrorType, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Details: detail}
}

func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, message, details...)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, message, details...)
}

func NewConflictError(message string, details ...string) *AppError {
	return newError(ErrorTypeConflict, message, details...)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return newError(ErrorTypeForbidden, message, details...)
}

func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, message, details...)
}

func NewUnavailableError(message string, details ...string) *AppError {
	return newError(ErrorTypeUnavailable, message, details...)
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

func IsConflictError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeConflict
}

func IsForbiddenError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeForbidden
}

func IsValidationError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsDuplicateError reports whether err is a database unique-constraint
// violation. The unique indexes on the ticket ledger are the correctness
// backstop for concurrent creates, so callers translate this into a
// conflict response rather than propagating it.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite / PostgreSQL unique violation
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "unique constraint") {
		return true
	}
	return false
}
