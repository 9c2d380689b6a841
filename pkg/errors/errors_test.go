package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("connection reset")

	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("Invalid input", map[string]string{"email": "Invalid email format"}), ErrorTypeValidation, http.StatusBadRequest},
		{"duplicate", NewDuplicateError("Email already registered"), ErrorTypeDuplicate, http.StatusBadRequest},
		{"authentication", NewAuthenticationError("Invalid credentials"), ErrorTypeAuthentication, http.StatusUnauthorized},
		{"authorization", NewAuthorizationError("Actor mismatch"), ErrorTypeAuthorization, http.StatusForbidden},
		{"not found", NewNotFoundError("Poll not found"), ErrorTypeNotFound, http.StatusNotFound},
		{"poll closed", NewPollClosedError("Poll is closed"), ErrorTypePollClosed, http.StatusBadRequest},
		{"rate limit", NewRateLimitError("Too many attempts"), ErrorTypeRateLimit, http.StatusTooManyRequests},
		{"internal", NewInternalError("Failed", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"unavailable", NewUnavailableError("Store down", cause), ErrorTypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewInternalError("Failed to cast vote", cause)

	assert.Equal(t, "internal: Failed to cast vote (connection reset)", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "not_found: Poll not found", NewNotFoundError("Poll not found").Error())
}

func TestNewErrorResponse(t *testing.T) {
	appErr := NewValidationError("Invalid input", map[string]string{"options": "At least 2 options are required"})
	resp := NewErrorResponse(appErr, "req-1")

	assert.Equal(t, ErrorTypeValidation, resp.Error.Type)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "At least 2 options are required", resp.Error.Details["options"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}
