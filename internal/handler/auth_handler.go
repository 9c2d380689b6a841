package handler

import (
	"net/http"
	"time"

	"bolt-api/internal/container"
	"bolt-api/internal/domain"
	"bolt-api/pkg/errors"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register. Token is set only when
// token issuance is enabled.
type AuthResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}
	if err := validate(loginRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	user, err := h.container.Services.Credentials.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	logger.WithField("user_id", user.ID).Debug("User logged in")
	respondJSON(w, http.StatusOK, resp, logger)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}
	if err := validate(registerRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	user, err := h.container.Services.Credentials.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	resp, err := h.authResponse(user)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusCreated, resp, logger)
}

func (h *AuthHandler) authResponse(user *domain.User) (*AuthResponse, error) {
	resp := &AuthResponse{User: user}
	if !h.container.HasTokens() {
		return resp, nil
	}

	token, expiresAt, err := h.container.Tokens.Issue(user.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue token", err)
	}
	resp.Token = token
	resp.ExpiresAt = &expiresAt
	return resp, nil
}
