package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupHandler_Create(t *testing.T) {
	s := newTestServer(t, nil)
	john := s.register("johndoe")
	jane := s.register("janedoe")

	tests := []struct {
		name        string
		body        map[string]string
		token       string
		wantStatus  int
		wantType    string
		wantDetails map[string]string
	}{
		{
			name:       "valid group",
			body:       map[string]string{"name": "Movie Night", "description": "Weekly picks", "creator_id": john.User.ID},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "creator from token",
			body:       map[string]string{"name": "Book Club"},
			token:      john.Token,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "creator contradicts token",
			body:       map[string]string{"name": "Book Club", "creator_id": jane.User.ID},
			token:      john.Token,
			wantStatus: http.StatusForbidden,
			wantType:   "authorization",
		},
		{
			name:       "name too short",
			body:       map[string]string{"name": "ab", "creator_id": john.User.ID},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
			wantDetails: map[string]string{
				"name": "Group name must be at least 3 characters",
			},
		},
		{
			name:       "missing fields",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
			wantDetails: map[string]string{
				"name":       "Group name is required",
				"creator_id": "Creator ID is required",
			},
		},
		{
			name:       "unknown creator",
			body:       map[string]string{"name": "Ghosts", "creator_id": "missing"},
			wantStatus: http.StatusNotFound,
			wantType:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/groups", tt.body, tt.token)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusCreated {
				group := decode[groupJSON](t, rec)
				assert.NotEmpty(t, group.ID)
				assert.Equal(t, tt.body["name"], group.Name)
				assert.Equal(t, john.User.ID, group.CreatorID)
				assert.Equal(t, []string{john.User.ID}, group.Members)
				return
			}

			resp := decode[errorJSON](t, rec)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, resp.Error.Details)
			}
		})
	}
}

func TestGroupHandler_ListAndGet(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/groups", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	john := s.register("johndoe")
	movie := s.createGroup("Movie Night", john.User.ID)
	books := s.createGroup("Book Club", john.User.ID)
	s.createPoll(movie.ID, john.User.ID, "Inception", "Interstellar")

	groups := decode[[]groupJSON](t, s.do(http.MethodGet, "/groups", nil, ""))
	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{movie.ID, books.ID}, []string{groups[0].ID, groups[1].ID})

	rec = s.do(http.MethodGet, "/groups/"+movie.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[groupViewJSON](t, rec)
	assert.Equal(t, "Movie Night", view.Name)
	require.Len(t, view.Members, 1)
	assert.Equal(t, "johndoe", view.Members[0].Username)
	require.Len(t, view.Polls, 1)
	require.Len(t, view.Polls[0].Options, 2)
	assert.Nil(t, view.Polls[0].Options[0].Votes, "group view carries counts only")

	rec = s.do(http.MethodGet, "/groups/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Group not found", decode[errorJSON](t, rec).Error.Message)
}

func TestGroupHandler_AddMember(t *testing.T) {
	s := newTestServer(t, nil)
	john := s.register("johndoe")
	jane := s.register("janedoe")
	group := s.createGroup("Movie Night", john.User.ID)

	tests := []struct {
		name        string
		groupID     string
		body        map[string]string
		wantStatus  int
		wantMembers []string
	}{
		{name: "adds member", groupID: group.ID, body: map[string]string{"user_id": jane.User.ID}, wantStatus: http.StatusOK, wantMembers: []string{"johndoe", "janedoe"}},
		{name: "already a member", groupID: group.ID, body: map[string]string{"user_id": jane.User.ID}, wantStatus: http.StatusOK, wantMembers: []string{"johndoe", "janedoe"}},
		{name: "missing user id", groupID: group.ID, body: map[string]string{}, wantStatus: http.StatusBadRequest},
		{name: "unknown user", groupID: group.ID, body: map[string]string{"user_id": "missing"}, wantStatus: http.StatusNotFound},
		{name: "unknown group", groupID: "missing", body: map[string]string{"user_id": jane.User.ID}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/groups/"+tt.groupID+"/members", tt.body, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMembers == nil {
				return
			}

			view := decode[groupViewJSON](t, rec)
			names := make([]string, 0, len(view.Members))
			for _, m := range view.Members {
				names = append(names, m.Username)
			}
			assert.Equal(t, tt.wantMembers, names)
		})
	}
}
