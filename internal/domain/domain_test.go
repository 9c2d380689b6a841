package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoll_IsActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name     string
		expireAt *time.Time
		expected bool
	}{
		{name: "no expiry", expireAt: nil, expected: true},
		{name: "expires later", expireAt: &future, expected: true},
		{name: "expires exactly now", expireAt: &now, expected: false},
		{name: "already expired", expireAt: &past, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Poll{ExpireAt: tt.expireAt}
			assert.Equal(t, tt.expected, p.IsActive(now))
		})
	}
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	assert.False(t, verr.HasErrors())
	assert.Nil(t, verr.OrNil())

	verr.Add("title", "Title is required")
	verr.Add("title", "ignored")
	verr.Add("options", "At least 2 options are required")

	err := verr.OrNil()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(fmt.Errorf("create poll: %w", err), ErrInvalidInput))
	assert.Equal(t, "Title is required", verr.Fields["title"])
	assert.Equal(t, "invalid input (options: At least 2 options are required; title: Title is required)", err.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("poll")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "poll not found", err.Error())
	assert.False(t, IsDuplicate(err))
	assert.True(t, IsDuplicate(fmt.Errorf("register: %w", ErrDuplicateEmail)))
}

func TestOptionView_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		view     *OptionView
		expected string
	}{
		{
			name:     "summary without voters",
			view:     &OptionView{ID: "o1", Text: "A", VoteCount: 2},
			expected: `{"id":"o1","text":"A","vote_count":2}`,
		},
		{
			name:     "empty voter list",
			view:     &OptionView{ID: "o1", Text: "A", Voters: []string{}},
			expected: `{"id":"o1","text":"A","vote_count":0,"votes":[]}`,
		},
		{
			name:     "voters",
			view:     &OptionView{ID: "o1", Text: "A", VoteCount: 1, Voters: []string{"u1"}},
			expected: `{"id":"o1","text":"A","vote_count":1,"votes":["u1"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.view)
			assert.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}
