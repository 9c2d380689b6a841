// Package repositorytest holds the behaviour every repository implementation
// must share. Store packages call Run from their own tests.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty set of repositories for one test
type Factory func(t *testing.T) *repository.Repositories

// base is truncated to microseconds so every store round-trips it exactly
var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Run executes the shared contract against the repositories built by newRepos
func Run(t *testing.T, newRepos Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepos) })
	t.Run("Groups", func(t *testing.T) { testGroups(t, newRepos) })
	t.Run("Polls", func(t *testing.T) { testPolls(t, newRepos) })
	t.Run("Votes", func(t *testing.T) { testVotes(t, newRepos) })
}

// CreateUser inserts a user with derived email and a placeholder digest
func CreateUser(t *testing.T, repos *repository.Repositories, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          username + "@example.com",
		PasswordDigest: "digest",
		Avatar:         "https://example.com/avatar.jpg",
		CreatedAt:      base,
	}
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return user
}

// CreateGroup inserts a group created by creator at createdAt
func CreateGroup(t *testing.T, repos *repository.Repositories, name string, creator *domain.User, createdAt time.Time) *domain.Group {
	t.Helper()

	group := &domain.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatorID: creator.ID,
		CreatedAt: createdAt,
	}
	require.NoError(t, repos.Groups.Create(context.Background(), group))
	return group
}

// CreatePoll inserts a poll with one option per text
func CreatePoll(t *testing.T, repos *repository.Repositories, group *domain.Group, creator *domain.User, texts ...string) *domain.Poll {
	t.Helper()

	poll := newPoll(group.ID, creator.ID, base, texts...)
	require.NoError(t, repos.Polls.Create(context.Background(), poll))
	return poll
}

func newPoll(groupID, creatorID string, createdAt time.Time, texts ...string) *domain.Poll {
	expire := createdAt.Add(7 * 24 * time.Hour)
	poll := &domain.Poll{
		ID:        uuid.NewString(),
		Title:     "Pick",
		GroupID:   groupID,
		CreatorID: creatorID,
		CreatedAt: createdAt,
		ExpireAt:  &expire,
	}
	for i, text := range texts {
		poll.Options = append(poll.Options, &domain.PollOption{
			ID:       uuid.NewString(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		})
	}
	return poll
}

func testUsers(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("create and lookup", func(t *testing.T) {
		repos := newRepos(t)
		user := CreateUser(t, repos, "johndoe")

		byID, err := repos.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "johndoe", byID.Username)
		assert.Equal(t, "digest", byID.PasswordDigest)
		assert.True(t, base.Equal(byID.CreatedAt))

		byEmail, err := repos.Users.GetByEmail(ctx, "johndoe@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, user.ID, byEmail.ID)

		byName, err := repos.Users.GetByUsername(ctx, "johndoe")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, user.ID, byName.ID)
	})

	t.Run("missing user is nil", func(t *testing.T) {
		repos := newRepos(t)

		u, err := repos.Users.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, u)

		u, err = repos.Users.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repos := newRepos(t)
		CreateUser(t, repos, "johndoe")

		err := repos.Users.Create(ctx, &domain.User{
			ID:             uuid.NewString(),
			Username:       "other",
			Email:          "johndoe@example.com",
			PasswordDigest: "digest",
			CreatedAt:      base,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repos := newRepos(t)
		CreateUser(t, repos, "johndoe")

		err := repos.Users.Create(ctx, &domain.User{
			ID:             uuid.NewString(),
			Username:       "johndoe",
			Email:          "other@example.com",
			PasswordDigest: "digest",
			CreatedAt:      base,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})

	t.Run("concurrent duplicate registration", func(t *testing.T) {
		repos := newRepos(t)

		var wg sync.WaitGroup
		errs := make([]error, 5)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repos.Users.Create(ctx, &domain.User{
					ID:             uuid.NewString(),
					Username:       fmt.Sprintf("user%d", i),
					Email:          "same@example.com",
					PasswordDigest: "digest",
					CreatedAt:      base,
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("update profile", func(t *testing.T) {
		repos := newRepos(t)
		user := CreateUser(t, repos, "johndoe")
		CreateUser(t, repos, "janedoe")

		user.Username = "johnny"
		user.Bio = "hello"
		require.NoError(t, repos.Users.Update(ctx, user))

		got, err := repos.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "johnny", got.Username)
		assert.Equal(t, "hello", got.Bio)
		assert.Equal(t, "johndoe@example.com", got.Email)

		user.Username = "janedoe"
		assert.ErrorIs(t, repos.Users.Update(ctx, user), domain.ErrDuplicateUsername)

		missing := &domain.User{ID: "missing", Username: "ghost"}
		assert.ErrorIs(t, repos.Users.Update(ctx, missing), domain.ErrNotFound)
	})

	t.Run("search", func(t *testing.T) {
		repos := newRepos(t)
		CreateUser(t, repos, "johndoe")
		CreateUser(t, repos, "janedoe")
		CreateUser(t, repos, "admin")
		CreateUser(t, repos, "x_y")

		tests := []struct {
			query    string
			expected []string
		}{
			{query: "jo", expected: []string{"johndoe"}},
			{query: "JO", expected: []string{"johndoe"}},
			{query: "doe", expected: []string{"janedoe", "johndoe"}},
			{query: "example.com", expected: []string{"admin", "janedoe", "johndoe", "x_y"}},
			{query: "%", expected: []string{}},
			{query: "_", expected: []string{"x_y"}},
			{query: "nobody", expected: []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				users, err := repos.Users.Search(ctx, tt.query, 20)
				require.NoError(t, err)
				names := make([]string, 0, len(users))
				for _, u := range users {
					names = append(names, u.Username)
				}
				assert.Equal(t, tt.expected, names)
			})
		}

		limited, err := repos.Users.Search(ctx, "example", 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("list by ids keeps order", func(t *testing.T) {
		repos := newRepos(t)
		a := CreateUser(t, repos, "alice")
		b := CreateUser(t, repos, "bob")

		users, err := repos.Users.ListByIDs(ctx, []string{b.ID, "missing", a.ID})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, b.ID, users[0].ID)
		assert.Equal(t, a.ID, users[1].ID)

		users, err = repos.Users.ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func testGroups(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("creator is first member", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		group := CreateGroup(t, repos, "Movie Night", u1, base)
		assert.Equal(t, []string{u1.ID}, group.MemberIDs)

		got, err := repos.Groups.GetByID(ctx, group.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Movie Night", got.Name)
		assert.Equal(t, u1.ID, got.CreatorID)
		assert.Equal(t, []string{u1.ID}, got.MemberIDs)
	})

	t.Run("unknown creator", func(t *testing.T) {
		repos := newRepos(t)

		err := repos.Groups.Create(ctx, &domain.Group{
			ID:        uuid.NewString(),
			Name:      "Orphans",
			CreatorID: "missing",
			CreatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		groups, err := repos.Groups.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("missing group is nil", func(t *testing.T) {
		repos := newRepos(t)
		g, err := repos.Groups.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, g)
	})

	t.Run("add member is idempotent", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		u2 := CreateUser(t, repos, "u2")
		group := CreateGroup(t, repos, "Book Club", u1, base)

		require.NoError(t, repos.Groups.AddMember(ctx, group.ID, u2.ID, base.Add(time.Minute)))
		require.NoError(t, repos.Groups.AddMember(ctx, group.ID, u2.ID, base.Add(2*time.Minute)))
		require.NoError(t, repos.Groups.AddMember(ctx, group.ID, u1.ID, base.Add(3*time.Minute)))

		got, err := repos.Groups.GetByID(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{u1.ID, u2.ID}, got.MemberIDs)

		err = repos.Groups.AddMember(ctx, "missing", u2.ID, base)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "group not found")

		err = repos.Groups.AddMember(ctx, group.ID, "missing", base)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "user not found")
	})

	t.Run("list is ordered by creation", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		later := CreateGroup(t, repos, "Later", u1, base.Add(time.Hour))
		earlier := CreateGroup(t, repos, "Earlier", u1, base)

		groups, err := repos.Groups.List(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, earlier.ID, groups[0].ID)
		assert.Equal(t, later.ID, groups[1].ID)
		assert.Equal(t, []string{u1.ID}, groups[0].MemberIDs)
	})
}

func testPolls(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("create keeps option order", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		group := CreateGroup(t, repos, "Movie Night", u1, base)
		poll := CreatePoll(t, repos, group, u1, "C", "A", "B")

		got, err := repos.Polls.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Pick", got.Title)
		assert.Equal(t, group.ID, got.GroupID)
		require.NotNil(t, got.ExpireAt)
		assert.True(t, poll.ExpireAt.Equal(*got.ExpireAt))

		require.Len(t, got.Options, 3)
		for i, text := range []string{"C", "A", "B"} {
			assert.Equal(t, text, got.Options[i].Text)
			assert.Equal(t, poll.Options[i].ID, got.Options[i].ID)
			assert.Equal(t, poll.ID, got.Options[i].PollID)
		}

		opt, err := repos.Polls.GetOption(ctx, poll.Options[1].ID)
		require.NoError(t, err)
		require.NotNil(t, opt)
		assert.Equal(t, "A", opt.Text)
		assert.Equal(t, poll.ID, opt.PollID)
	})

	t.Run("open-ended poll", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		group := CreateGroup(t, repos, "Movie Night", u1, base)

		poll := newPoll(group.ID, u1.ID, base, "A", "B")
		poll.ExpireAt = nil
		require.NoError(t, repos.Polls.Create(ctx, poll))

		got, err := repos.Polls.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ExpireAt)
	})

	t.Run("unknown group persists nothing", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")

		poll := newPoll("missing", u1.ID, base, "A", "B")
		err := repos.Polls.Create(ctx, poll)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.EqualError(t, err, "group not found")

		got, err := repos.Polls.GetByID(ctx, poll.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		opt, err := repos.Polls.GetOption(ctx, poll.Options[0].ID)
		require.NoError(t, err)
		assert.Nil(t, opt)
	})

	t.Run("list by group", func(t *testing.T) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		g1 := CreateGroup(t, repos, "One", u1, base)
		g2 := CreateGroup(t, repos, "Two", u1, base)

		second := newPoll(g1.ID, u1.ID, base.Add(time.Hour), "A", "B")
		first := newPoll(g1.ID, u1.ID, base, "C", "D")
		other := newPoll(g2.ID, u1.ID, base, "E", "F")
		for _, p := range []*domain.Poll{second, first, other} {
			require.NoError(t, repos.Polls.Create(ctx, p))
		}

		polls, err := repos.Polls.ListByGroup(ctx, g1.ID)
		require.NoError(t, err)
		require.Len(t, polls, 2)
		assert.Equal(t, first.ID, polls[0].ID)
		assert.Equal(t, second.ID, polls[1].ID)
		assert.Len(t, polls[0].Options, 2)

		polls, err = repos.Polls.ListByGroup(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, polls)
	})

	t.Run("missing lookups are nil", func(t *testing.T) {
		repos := newRepos(t)

		p, err := repos.Polls.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, p)

		o, err := repos.Polls.GetOption(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, o)
	})
}

func testVotes(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	setup := func(t *testing.T) (*repository.Repositories, *domain.User, *domain.Poll) {
		repos := newRepos(t)
		u1 := CreateUser(t, repos, "u1")
		group := CreateGroup(t, repos, "Movie Night", u1, base)
		return repos, u1, CreatePoll(t, repos, group, u1, "A", "B")
	}

	vote := func(poll *domain.Poll, optionID, userID string, at time.Time) *domain.Vote {
		return &domain.Vote{
			ID:       uuid.NewString(),
			OptionID: optionID,
			PollID:   poll.ID,
			UserID:   userID,
			VotedAt:  at,
		}
	}

	t.Run("replace keeps one vote per user", func(t *testing.T) {
		repos, u1, poll := setup(t)
		a, b := poll.Options[0].ID, poll.Options[1].ID

		require.NoError(t, repos.Votes.Replace(ctx, vote(poll, a, u1.ID, base)))
		require.NoError(t, repos.Votes.Replace(ctx, vote(poll, b, u1.ID, base.Add(time.Second))))

		votes, err := repos.Votes.ListByPoll(ctx, poll.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, b, votes[0].OptionID)
		assert.Equal(t, u1.ID, votes[0].UserID)
	})

	t.Run("votes are listed in cast order", func(t *testing.T) {
		repos, u1, poll := setup(t)
		u2 := CreateUser(t, repos, "u2")
		a := poll.Options[0].ID

		require.NoError(t, repos.Votes.Replace(ctx, vote(poll, a, u2.ID, base.Add(time.Second))))
		require.NoError(t, repos.Votes.Replace(ctx, vote(poll, a, u1.ID, base)))

		votes, err := repos.Votes.ListByPoll(ctx, poll.ID)
		require.NoError(t, err)
		require.Len(t, votes, 2)
		assert.Equal(t, u1.ID, votes[0].UserID)
		assert.Equal(t, u2.ID, votes[1].UserID)
	})

	t.Run("option from another poll", func(t *testing.T) {
		repos, u1, poll := setup(t)
		group, err := repos.Groups.GetByID(ctx, poll.GroupID)
		require.NoError(t, err)
		other := CreatePoll(t, repos, group, u1, "X", "Y")

		err = repos.Votes.Replace(ctx, vote(poll, other.Options[0].ID, u1.ID, base))
		assert.ErrorIs(t, err, domain.ErrOptionNotInPoll)

		votes, err := repos.Votes.ListByPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.Empty(t, votes)
	})

	t.Run("expired poll rejects votes", func(t *testing.T) {
		repos, u1, poll := setup(t)
		a := poll.Options[0].ID

		require.NoError(t, repos.Votes.Replace(ctx, vote(poll, a, u1.ID, poll.ExpireAt.Add(-time.Millisecond))))

		err := repos.Votes.Replace(ctx, vote(poll, poll.Options[1].ID, u1.ID, *poll.ExpireAt))
		assert.ErrorIs(t, err, domain.ErrPollClosed)

		votes, err := repos.Votes.ListByPoll(ctx, poll.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, a, votes[0].OptionID, "earlier vote survives")
	})

	t.Run("unknown poll", func(t *testing.T) {
		repos, u1, poll := setup(t)
		missing := *poll
		missing.ID = "missing"

		err := repos.Votes.Replace(ctx, vote(&missing, poll.Options[0].ID, u1.ID, base))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("concurrent casts converge", func(t *testing.T) {
		repos, u1, poll := setup(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				opt := poll.Options[i%2].ID
				assert.NoError(t, repos.Votes.Replace(ctx, vote(poll, opt, u1.ID, base.Add(time.Duration(i)*time.Second))))
			}(i)
		}
		wg.Wait()

		votes, err := repos.Votes.ListByPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.Len(t, votes, 1)
	})
}
