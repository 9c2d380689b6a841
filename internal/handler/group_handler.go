package handler

import (
	"net/http"

	"bolt-api/internal/container"
	"bolt-api/internal/domain"

	"github.com/go-chi/chi/v5"
)

// GroupHandler handles group and membership requests
type GroupHandler struct {
	container *container.Container
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(container *container.Container) *GroupHandler {
	return &GroupHandler{
		container: container,
	}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   string `json:"creator_id"`
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// List handles GET /groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	groups, err := h.container.Services.Groups.ListGroups(r.Context())
	if err != nil {
		respondError(w, r, err, logger)
		return
	}
	if groups == nil {
		groups = []*domain.Group{}
	}

	respondJSON(w, http.StatusOK, groups, logger)
}

// Create handles POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}

	actor, err := resolveActor(r, req.CreatorID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}
	req.CreatorID = actor

	if err := validate(createGroupRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	group, err := h.container.Services.Groups.CreateGroup(r.Context(), req.Name, req.Description, req.CreatorID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusCreated, group, logger)
}

// Get handles GET /groups/{groupID}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	view, err := h.container.Services.Groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusOK, view, logger)
}

// AddMember handles POST /groups/{groupID}/members
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req addMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}
	if err := validate(addMemberRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	view, err := h.container.Services.Groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusOK, view, logger)
}
