package handler

import (
	"net/http"

	"bolt-api/internal/container"
	"bolt-api/internal/domain"

	"github.com/go-chi/chi/v5"
)

// PollHandler handles poll creation, reads and votes
type PollHandler struct {
	container *container.Container
}

// NewPollHandler creates a new poll handler
func NewPollHandler(container *container.Container) *PollHandler {
	return &PollHandler{
		container: container,
	}
}

// createPollRequest accepts both "title" and "question", and "createdBy" as
// an alias of "creator_id"
type createPollRequest struct {
	Title       string   `json:"title"`
	Question    string   `json:"question"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	CreatorID   string   `json:"creator_id"`
	CreatedBy   string   `json:"createdBy"`
	ExpireDays  *int     `json:"expire_days"`
}

func (req *createPollRequest) question() string {
	if present(req.Question) {
		return req.Question
	}
	return req.Title
}

func (req *createPollRequest) creator() string {
	if present(req.CreatorID) {
		return req.CreatorID
	}
	return req.CreatedBy
}

type voteRequest struct {
	UserID   string `json:"user_id"`
	OptionID string `json:"option_id"`
}

// Create handles POST /groups/{groupID}/polls
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req createPollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}

	actor, err := resolveActor(r, req.creator())
	if err != nil {
		respondError(w, r, err, logger)
		return
	}
	req.CreatorID = actor

	if err := validate(createPollRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	view, err := h.container.Services.Polls.CreatePoll(r.Context(), domain.CreatePollInput{
		GroupID:     chi.URLParam(r, "groupID"),
		Title:       req.question(),
		Description: req.Description,
		Options:     req.Options,
		CreatorID:   req.CreatorID,
		ExpireDays:  req.ExpireDays,
	})
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusCreated, view, logger)
}

// Get handles GET /polls/{pollID}
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	view, err := h.container.Services.Polls.GetPoll(r.Context(), chi.URLParam(r, "pollID"))
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusOK, view, logger)
}

// Vote handles POST /polls/{pollID}/vote
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, logger)
		return
	}

	actor, err := resolveActor(r, req.UserID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}
	req.UserID = actor

	if err := validate(voteRules(&req)...); err != nil {
		respondError(w, r, err, logger)
		return
	}

	view, err := h.container.Services.Polls.CastVote(r.Context(), chi.URLParam(r, "pollID"), req.OptionID, req.UserID)
	if err != nil {
		respondError(w, r, err, logger)
		return
	}

	respondJSON(w, http.StatusOK, view, logger)
}
