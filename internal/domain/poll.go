package domain

import (
	"encoding/json"
	"time"
)

// Poll is a question scoped to a group with an ordered list of options
type Poll struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	GroupID     string        `json:"group_id"`
	CreatorID   string        `json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpireAt    *time.Time    `json:"expire_at"`
	Options     []*PollOption `json:"options"`
}

// IsActive reports whether the poll accepts votes at the given instant.
// A poll without an expiry never closes.
func (p *Poll) IsActive(now time.Time) bool {
	return p.ExpireAt == nil || now.Before(*p.ExpireAt)
}

// Option returns the option with the given id, or nil
func (p *Poll) Option(optionID string) *PollOption {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return opt
		}
	}
	return nil
}

// PollOption is one choice of a poll
type PollOption struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// CreatePollInput holds the parameters of a poll creation
type CreatePollInput struct {
	GroupID     string
	Title       string
	Description string
	Options     []string
	CreatorID   string
	// ExpireDays overrides the configured horizon when set
	ExpireDays *int
}

// OptionView is an option annotated with its tally. Voters is nil when the
// view omits voter lists.
type OptionView struct {
	ID        string
	Text      string
	VoteCount int
	Voters    []string
}

// MarshalJSON emits "votes" only when voter lists were requested, and as an
// empty array rather than omitting it when nobody voted
func (o *OptionView) MarshalJSON() ([]byte, error) {
	type optionJSON struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		VoteCount int       `json:"vote_count"`
		Voters    *[]string `json:"votes,omitempty"`
	}

	out := optionJSON{ID: o.ID, Text: o.Text, VoteCount: o.VoteCount}
	if o.Voters != nil {
		out.Voters = &o.Voters
	}
	return json.Marshal(out)
}

// PollView is the projection of a poll with per-option tallies
type PollView struct {
	ID          string        `json:"id"`
	GroupID     string        `json:"group_id"`
	Title       string        `json:"title"`
	Question    string        `json:"question"`
	Description string        `json:"description"`
	CreatorID   string        `json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpireAt    *time.Time    `json:"expire_at"`
	Active      bool          `json:"active"`
	TotalVotes  int           `json:"total_votes"`
	Options     []*OptionView `json:"options"`
}
