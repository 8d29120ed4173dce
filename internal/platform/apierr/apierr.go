package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the scheduling core's failure taxonomy. Every failure is
// detected before any write in the enclosing transaction and reported
// synchronously; there is no automatic retry anywhere.
const (
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeCapacity     = "CAPACITY"
	CodePrerequisite = "PREREQUISITE"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

func Capacity(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeCapacity, fmt.Errorf(format, args...))
}

func Prerequisite(format string, args ...interface{}) *Error {
	return New(http.StatusUnprocessableEntity, CodePrerequisite, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

func IsCode(err error, code string) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
