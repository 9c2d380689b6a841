package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolt-api/internal/config"
	"bolt-api/pkg/auth"
)

func TestAuthHandler_Register(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("johndoe")

	tests := []struct {
		name        string
		body        interface{}
		wantStatus  int
		wantType    string
		wantDetails map[string]string
	}{
		{
			name:       "valid registration",
			body:       map[string]string{"email": "jane@example.com", "username": "janedoe", "password": "password123"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate email",
			body:       map[string]string{"email": "johndoe@example.com", "username": "other", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantType:   "duplicate",
		},
		{
			name:       "duplicate username",
			body:       map[string]string{"email": "other@example.com", "username": "johndoe", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantType:   "duplicate",
		},
		{
			name:       "all fields missing",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
			wantDetails: map[string]string{
				"email":    "Email is required",
				"username": "Username is required",
				"password": "Password is required",
			},
		},
		{
			name:       "malformed fields",
			body:       map[string]string{"email": "not-an-email", "username": "a b", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
			wantDetails: map[string]string{
				"email":    "Invalid email format",
				"username": "Username must be 3-20 characters and contain only letters, numbers, underscores, or hyphens",
				"password": "Password must be at least 8 characters long",
			},
		},
		{
			name:       "unknown field",
			body:       `{"email":"x@example.com","username":"xavier","password":"password123","admin":true}`,
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/register", tt.body, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusCreated {
				resp := decode[authJSON](t, rec)
				assert.NotEmpty(t, resp.User.ID)
				assert.Equal(t, "janedoe", resp.User.Username)
				assert.Equal(t, config.DefaultAvatarURL, resp.User.Avatar)
				assert.NotEmpty(t, resp.Token)
				assert.NotNil(t, resp.ExpiresAt)
				assert.NotContains(t, rec.Body.String(), "password")
				return
			}

			resp := decode[errorJSON](t, rec)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, resp.Error.Details)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t, nil)
	registered := s.register("johndoe")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantType   string
	}{
		{
			name:       "valid credentials",
			body:       map[string]string{"email": "johndoe@example.com", "password": "password123"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong password",
			body:       map[string]string{"email": "johndoe@example.com", "password": "wrong-password"},
			wantStatus: http.StatusUnauthorized,
			wantType:   "authentication",
		},
		{
			name:       "unknown email",
			body:       map[string]string{"email": "nobody@example.com", "password": "password123"},
			wantStatus: http.StatusUnauthorized,
			wantType:   "authentication",
		},
		{
			name:       "missing password",
			body:       map[string]string{"email": "johndoe@example.com"},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/login", tt.body, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusOK {
				resp := decode[authJSON](t, rec)
				assert.Equal(t, registered.User.ID, resp.User.ID)

				claims, err := auth.NewTokenIssuer(testJWTSecret, 0).Parse(resp.Token)
				require.NoError(t, err)
				assert.Equal(t, registered.User.ID, claims.UserID)
				return
			}

			assert.Equal(t, tt.wantType, decode[errorJSON](t, rec).Error.Type)
		})
	}
}

func TestAuthHandler_LoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("johndoe")

	wrongPassword := s.do(http.MethodPost, "/auth/login", map[string]string{"email": "johndoe@example.com", "password": "nope-nope"}, "")
	unknownEmail := s.do(http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com", "password": "nope-nope"}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decode[errorJSON](t, wrongPassword).Error.Message, decode[errorJSON](t, unknownEmail).Error.Message)
}

func TestAuthHandler_LoginThrottled(t *testing.T) {
	mr, redisCfg := withRedis(t)
	s := newTestServer(t, func(cfg *config.Config) {
		redisCfg(cfg)
		cfg.LoginMaxAttempts = 2
		cfg.LoginAttemptWindow = time.Minute
	})
	s.register("johndoe")

	bad := map[string]string{"email": "johndoe@example.com", "password": "wrong-password"}
	good := map[string]string{"email": "johndoe@example.com", "password": "password123"}

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/auth/login", bad, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/auth/login", bad, "").Code)

	mr.FastForward(15 * time.Second)

	rec := s.do(http.MethodPost, "/auth/login", good, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limit", decode[errorJSON](t, rec).Error.Type)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
}

func TestAuthHandler_NoTokenWithoutSecret(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.JWTSecret = ""
	})

	resp := s.register("johndoe")
	assert.Empty(t, resp.Token)
	assert.Nil(t, resp.ExpiresAt)
	assert.NotContains(t, s.do(http.MethodPost, "/auth/login", map[string]string{"email": "johndoe@example.com", "password": "password123"}, "").Body.String(), "token")
}
