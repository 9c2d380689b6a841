package domain

import "time"

// Vote records a user's choice on a poll. PollID is derived from the option
// and stored alongside it so stores can enforce one vote per user per poll.
type Vote struct {
	ID       string    `json:"id"`
	OptionID string    `json:"option_id"`
	PollID   string    `json:"poll_id"`
	UserID   string    `json:"user_id"`
	VotedAt  time.Time `json:"voted_at"`
}
