package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "method", err: ErrMethodNotAllowed, want: http.StatusMethodNotAllowed},
		{name: "rate limit", err: ErrRateLimitExceeded, want: http.StatusTooManyRequests},
		{name: "malformed", err: ErrMalformedBody.WithCause(fmt.Errorf("eof")), want: http.StatusBadRequest},
		{name: "missing", err: ErrMissingField, want: http.StatusBadRequest},
		{name: "email", err: ErrInvalidEmail, want: http.StatusBadRequest},
		{name: "relay", err: ErrRelayUnavailable, want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("outer: %w", ErrMissingField), want: http.StatusBadRequest},
		{name: "foreign", err: stderrors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.err))
		})
	}
}

func TestToErrorResponseHidesCause(t *testing.T) {
	resp := ToErrorResponse(ErrRelayUnavailable.WithCause(stderrors.New("dial tcp: refused")))
	assert.Equal(t, ErrorResponse{Message: "Failed to send message. Please try again later."}, resp)

	resp = ToErrorResponse(stderrors.New("secret detail"))
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestIsMatchesDerivedErrors(t *testing.T) {
	derived := ErrRateLimitExceeded.WithMessage("custom").WithCause(stderrors.New("x"))

	assert.True(t, stderrors.Is(derived, ErrRateLimitExceeded))
	assert.False(t, IsValidation(derived))
	assert.True(t, IsValidation(ErrMissingField.WithDetail("field", "name")))
	assert.True(t, IsValidation(ErrInvalidEmail))
	assert.Equal(t, "custom", derived.Message)
	assert.Equal(t, "Too many requests. Please try again later.", ErrRateLimitExceeded.Message)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("kaboom")
	require.Error(t, err)

	var appErr *Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, appErr.Cause.Error(), "kaboom")
	assert.Empty(t, ErrInternal.Details)
}
