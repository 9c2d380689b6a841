package handler

import (
	"net/http"

	"bolt-api/internal/container"
	"bolt-api/internal/domain"
)

// UserHandler handles profile and user search requests
type UserHandler struct {
	container *container.Container
}

// NewUserHandler creates a new user handler
func NewUserHandler(container *container.Container) *UserHandler {
	return &UserHandler{
		container: container,
	}
}

type updateProfileRequest struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

// UserResponse wraps a single user
type UserResponse struct {
	User *domain.User `json:"user"`
}

// UpdateProfile handles PUT /users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}

	actor, err := resolveActor(r, req.ID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}
	req.ID = actor

	if err := validate(updateProfileRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	user, err := h.container.Services.Credentials.UpdateProfile(r.Context(), req.ID, domain.ProfileUpdate{
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{User: user}, logger)
}

// Search handles GET /friends/search?query=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	users, err := h.container.Services.Groups.SearchUsers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	results := make([]domain.UserSummary, 0, len(users))
	for _, user := range users {
		results = append(results, user.Summary())
	}
	respondJSON(w, http.StatusOK, results, logger)
}
