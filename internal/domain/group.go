package domain

import "time"

// Group is a set of users that polls are scoped to
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	MemberIDs   []string  `json:"members"`
}

// HasMember reports whether userID is in the membership set
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// GroupView is the composite read model returned by GET /groups/{id}
type GroupView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatorID   string        `json:"creator_id"`
	CreatedAt   time.Time     `json:"created_at"`
	Members     []UserSummary `json:"members"`
	Polls       []*PollView   `json:"polls"`
}
