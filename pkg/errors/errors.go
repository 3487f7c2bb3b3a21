package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrFieldConstraint, ErrChoiceConstraint, ErrCrossField:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrConflict
)

// Record validation codes
const (
	ErrFieldConstraint ErrorCode = iota + 2000
	ErrChoiceConstraint
	ErrCrossField
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrBadRequest:
		return "bad_request"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrForbidden:
		return "forbidden"
	case ErrInternal:
		return "internal"
	case ErrConflict:
		return "conflict"
	case ErrFieldConstraint:
		return "field_constraint_violation"
	case ErrChoiceConstraint:
		return "choice_constraint_violation"
	case ErrCrossField:
		return "cross_field_validation_failure"
	}
	return fmt.Sprintf("error_%d", int(c))
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewUnauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
		Err:     err,
	}
}

// NewFieldConstraint reports a value that breaks a single field's declared
// type, length, nullability or numeric bound.
func NewFieldConstraint(field, message string, err error) *AppError {
	return &AppError{
		Code:    ErrFieldConstraint,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

// NewChoiceConstraint reports a code that is not a member of its choice set.
func NewChoiceConstraint(field, set, code string) *AppError {
	return &AppError{
		Code:    ErrChoiceConstraint,
		Message: fmt.Sprintf("%q is not a valid %s code", code, set),
		Field:   field,
	}
}

// NewCrossField reports a rule spanning several fields of one record.
func NewCrossField(message string, fields ...string) *AppError {
	return &AppError{
		Code:    ErrCrossField,
		Message: message,
		Field:   strings.Join(fields, ","),
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
