package service

import (
	"time"

	"bolt-api/internal/domain"
)

// BuildPollView annotates each option with its tally. Voter ids are listed
// in vote order when withVoters is set.
func BuildPollView(poll *domain.Poll, votes []*domain.Vote, now time.Time, withVoters bool) *domain.PollView {
	view := &domain.PollView{
		ID:          poll.ID,
		GroupID:     poll.GroupID,
		Title:       poll.Title,
		Question:    poll.Title,
		Description: poll.Description,
		CreatorID:   poll.CreatorID,
		CreatedAt:   poll.CreatedAt,
		ExpireAt:    poll.ExpireAt,
		Active:      poll.IsActive(now),
		Options:     make([]*domain.OptionView, 0, len(poll.Options)),
	}

	byOption := make(map[string]*domain.OptionView, len(poll.Options))
	for _, opt := range poll.Options {
		ov := &domain.OptionView{ID: opt.ID, Text: opt.Text}
		if withVoters {
			ov.Voters = []string{}
		}
		byOption[opt.ID] = ov
		view.Options = append(view.Options, ov)
	}

	for _, v := range votes {
		ov, ok := byOption[v.OptionID]
		if !ok {
			continue
		}
		ov.VoteCount++
		view.TotalVotes++
		if withVoters {
			ov.Voters = append(ov.Voters, v.UserID)
		}
	}

	return view
}

// BuildGroupView combines a group with its resolved members and poll views
func BuildGroupView(group *domain.Group, members []*domain.User, polls []*domain.PollView) *domain.GroupView {
	view := &domain.GroupView{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatorID:   group.CreatorID,
		CreatedAt:   group.CreatedAt,
		Members:     make([]domain.UserSummary, 0, len(members)),
		Polls:       polls,
	}
	if view.Polls == nil {
		view.Polls = []*domain.PollView{}
	}

	for _, m := range members {
		view.Members = append(view.Members, m.Summary())
	}
	return view
}
