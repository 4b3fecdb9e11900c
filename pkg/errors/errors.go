package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMethodNotAllowed  = NewError("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
	ErrRateLimitExceeded = NewError("RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", http.StatusTooManyRequests)
	ErrMalformedBody     = NewError("MALFORMED_BODY", "Invalid request body", http.StatusBadRequest)
	ErrMissingField      = NewError("MISSING_FIELD", "All fields are required", http.StatusBadRequest)
	ErrInvalidEmail      = NewError("INVALID_EMAIL", "Invalid email format", http.StatusBadRequest)
	ErrRelayUnavailable  = NewError("RELAY_UNAVAILABLE", "Failed to send message. Please try again later.", http.StatusInternalServerError)
	ErrInternal          = NewError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so derived copies still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

// WithMessage replaces the caller-facing message while keeping code and status.
func (e *Error) WithMessage(message string) *Error {
	err := *e
	err.Message = message
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrMalformedBody) || errors.Is(err, ErrMissingField) || errors.Is(err, ErrInvalidEmail)
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every contact endpoint response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ToErrorResponse renders the public body for err. Causes and details stay
// server-side.
func ToErrorResponse(err error) ErrorResponse {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal.WithCause(err)
	}

	return ErrorResponse{Message: appErr.Message}
}
