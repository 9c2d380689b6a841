package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bolt-api/internal/domain"
	"bolt-api/pkg/errors"
)

func TestToAppError(t *testing.T) {
	verr := domain.NewValidationError()
	verr.Add("title", "Poll question is required")

	tests := []struct {
		name        string
		err         error
		wantType    errors.ErrorType
		wantStatus  int
		wantMessage string
	}{
		{"validation", fmt.Errorf("create poll: %w", verr), errors.ErrorTypeValidation, http.StatusBadRequest, "Validation failed"},
		{"duplicate email", domain.ErrDuplicateEmail, errors.ErrorTypeDuplicate, http.StatusBadRequest, "Email already registered"},
		{"duplicate username", domain.ErrDuplicateUsername, errors.ErrorTypeDuplicate, http.StatusBadRequest, "Username already taken"},
		{"invalid credentials", domain.ErrInvalidCredentials, errors.ErrorTypeAuthentication, http.StatusUnauthorized, "Invalid credentials"},
		{"throttled", domain.ErrTooManyAttempts, errors.ErrorTypeRateLimit, http.StatusTooManyRequests, "Too many login attempts, try again later"},
		{"throttled with window", &domain.ThrottledError{RetryAfter: time.Minute}, errors.ErrorTypeRateLimit, http.StatusTooManyRequests, "Too many login attempts, try again later"},
		{"poll closed", domain.ErrPollClosed, errors.ErrorTypePollClosed, http.StatusBadRequest, "Poll is closed"},
		{"option not in poll", domain.ErrOptionNotInPoll, errors.ErrorTypeNotFound, http.StatusNotFound, "Option not found"},
		{"named not found", domain.NotFound("poll"), errors.ErrorTypeNotFound, http.StatusNotFound, "Poll not found"},
		{"wrapped not found", fmt.Errorf("add member: %w", domain.NotFound("user")), errors.ErrorTypeNotFound, http.StatusNotFound, "User not found"},
		{"bare not found", domain.ErrNotFound, errors.ErrorTypeNotFound, http.StatusNotFound, "Resource not found"},
		{"actor mismatch", errActorMismatch, errors.ErrorTypeAuthorization, http.StatusForbidden, "Cannot act on behalf of another user"},
		{"unexpected", fmt.Errorf("connection reset"), errors.ErrorTypeInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "45", retryAfterSeconds(45*time.Second))
	assert.Equal(t, "2", retryAfterSeconds(1500*time.Millisecond))
	assert.Equal(t, "1", retryAfterSeconds(time.Millisecond))
}

func TestToAppError_HidesInternalDetails(t *testing.T) {
	appErr := toAppError(fmt.Errorf("pq: password authentication failed for user bolt"))

	body := errors.NewErrorResponse(appErr, "req-1")
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.Nil(t, body.Error.Details)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  registerRequest
		want map[string]string
	}{
		{
			name: "valid",
			req:  registerRequest{Email: "john.doe+tag@example.co.uk", Username: "john_doe-1", Password: "password123"},
		},
		{
			name: "first failing rule wins",
			req:  registerRequest{Email: "", Username: "", Password: ""},
			want: map[string]string{
				"email":    "Email is required",
				"username": "Username is required",
				"password": "Password is required",
			},
		},
		{
			name: "username too long",
			req:  registerRequest{Email: "a@b.io", Username: "abcdefghijklmnopqrstu", Password: "password123"},
			want: map[string]string{
				"username": "Username must be 3-20 characters and contain only letters, numbers, underscores, or hyphens",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(registerRules(&tt.req)...)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}
