package main

import (
	"context"
	"errors"
	"fmt"

	"bolt-api/internal/domain"
	"bolt-api/internal/service"
)

type seedUser struct {
	username string
	email    string
	password string
	bio      string
}

type seedPoll struct {
	group      int
	creator    int
	title      string
	desc       string
	options    []string
	expireDays int
	// votes maps a user index to the option index they chose
	votes map[int]int
}

var (
	seedUsers = []seedUser{
		{"admin", "admin@example.com", "admin123", "Application administrator"},
		{"johndoe", "john@example.com", "password123", "Hi, I'm John! I love movies and music."},
		{"janedoe", "jane@example.com", "password123", "Hey there! I'm interested in photography and travel."},
	}

	seedGroups = []struct {
		name    string
		desc    string
		creator int
		members []int
	}{
		{"Movie Night", "Weekly movie night with friends. We vote on what to watch!", 0, []int{1, 2}},
		{"Book Club", "Monthly book discussion group. We read and discuss one book per month.", 1, []int{0}},
		{"Travel Buddies", "Group for planning trips and sharing travel experiences.", 2, []int{0}},
	}

	seedPolls = []seedPoll{
		{
			group:      0,
			creator:    0,
			title:      "What movie should we watch this weekend?",
			desc:       "Vote for your favorite movie for our Saturday movie night!",
			options:    []string{"The Shawshank Redemption", "Inception", "The Dark Knight"},
			expireDays: 1,
			votes:      map[int]int{0: 0, 1: 1, 2: 2},
		},
		{
			group:      1,
			creator:    1,
			title:      "Which book should we read next month?",
			desc:       "Vote for next month's book selection",
			options:    []string{"To Kill a Mockingbird", "1984", "The Great Gatsby"},
			expireDays: 3,
			votes:      map[int]int{0: 0, 1: 1},
		},
	}
)

type seedSummary struct {
	Users  int
	Groups int
	Polls  int
	Votes  int
}

// seed inserts the demo data through the services so passwords are hashed
// and every invariant is checked
func seed(ctx context.Context, services *service.Services) (*seedSummary, error) {
	summary := &seedSummary{}

	users := make([]*domain.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		user, err := services.Credentials.Register(ctx, su.username, su.email, su.password)
		if domain.IsDuplicate(err) {
			return nil, fmt.Errorf("user %s already exists, drop the database before seeding: %w", su.username, err)
		}
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", su.username, err)
		}

		bio := su.bio
		user, err = services.Credentials.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Bio: &bio})
		if err != nil {
			return nil, fmt.Errorf("update profile of %s: %w", su.username, err)
		}
		users = append(users, user)
		summary.Users++
	}

	groups := make([]*domain.Group, 0, len(seedGroups))
	for _, sg := range seedGroups {
		group, err := services.Groups.CreateGroup(ctx, sg.name, sg.desc, users[sg.creator].ID)
		if err != nil {
			return nil, fmt.Errorf("create group %s: %w", sg.name, err)
		}
		for _, member := range sg.members {
			if _, err := services.Groups.AddMember(ctx, group.ID, users[member].ID); err != nil {
				return nil, fmt.Errorf("add %s to %s: %w", users[member].Username, sg.name, err)
			}
		}
		groups = append(groups, group)
		summary.Groups++
	}

	for _, sp := range seedPolls {
		expireDays := sp.expireDays
		view, err := services.Polls.CreatePoll(ctx, domain.CreatePollInput{
			GroupID:     groups[sp.group].ID,
			Title:       sp.title,
			Description: sp.desc,
			Options:     sp.options,
			CreatorID:   users[sp.creator].ID,
			ExpireDays:  &expireDays,
		})
		if err != nil {
			return nil, fmt.Errorf("create poll %q: %w", sp.title, err)
		}
		summary.Polls++

		for voter := 0; voter < len(users); voter++ {
			choice, ok := sp.votes[voter]
			if !ok {
				continue
			}
			if _, err := services.Polls.CastVote(ctx, view.ID, view.Options[choice].ID, users[voter].ID); err != nil {
				if errors.Is(err, domain.ErrPollClosed) {
					return nil, fmt.Errorf("poll %q closed while seeding: %w", sp.title, err)
				}
				return nil, fmt.Errorf("vote on %q: %w", sp.title, err)
			}
			summary.Votes++
		}
	}

	return summary, nil
}
