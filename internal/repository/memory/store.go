// Package memory implements the repository interfaces in process memory.
// A single RWMutex serialises writers; readers receive copies.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"
)

// Store holds every entity of the application behind one lock
type Store struct {
	mu sync.RWMutex

	users   map[string]*domain.User
	groups  map[string]*domain.Group
	members map[string][]string
	polls   map[string]*domain.Poll
	options map[string]*domain.PollOption
	// votes keyed by poll id, then user id
	votes map[string]map[string]*domain.Vote
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		groups:  make(map[string]*domain.Group),
		members: make(map[string][]string),
		polls:   make(map[string]*domain.Poll),
		options: make(map[string]*domain.PollOption),
		votes:   make(map[string]map[string]*domain.Vote),
	}
}

// NewRepositories returns repositories backed by a fresh store
func NewRepositories() *repository.Repositories {
	s := NewStore()
	return s.Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Users:  &userRepo{s},
		Groups: &groupRepo{s},
		Polls:  &pollRepo{s},
		Votes:  &voteRepo{s},
	}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}

	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return copyUser(r.s.users[id]), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username }), nil
}

func (r *userRepo) find(match func(*domain.User) bool) *domain.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return copyUser(u)
		}
	}
	return nil
}

func (r *userRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return domain.NotFound("user")
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}

	existing.Username = user.Username
	existing.Bio = user.Bio
	return nil
}

func (r *userRepo) Search(_ context.Context, query string, limit int) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(query)
	users := []*domain.User{}
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

type groupRepo struct{ s *Store }

func (r *groupRepo) Create(_ context.Context, group *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[group.CreatorID]; !ok {
		return domain.NotFound("user")
	}

	cp := *group
	cp.MemberIDs = nil
	r.s.groups[group.ID] = &cp
	r.s.members[group.ID] = []string{group.CreatorID}

	group.MemberIDs = []string{group.CreatorID}
	return nil
}

func (r *groupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	return r.withMembers(g), nil
}

func (r *groupRepo) List(_ context.Context) ([]*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		groups = append(groups, r.withMembers(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.Before(groups[j].CreatedAt)
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (r *groupRepo) AddMember(_ context.Context, groupID, userID string, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[groupID]; !ok {
		return domain.NotFound("group")
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.NotFound("user")
	}
	for _, id := range r.s.members[groupID] {
		if id == userID {
			return nil
		}
	}
	r.s.members[groupID] = append(r.s.members[groupID], userID)
	return nil
}

// withMembers must be called with the lock held
func (r *groupRepo) withMembers(g *domain.Group) *domain.Group {
	cp := *g
	cp.MemberIDs = append([]string{}, r.s.members[g.ID]...)
	return &cp
}

type pollRepo struct{ s *Store }

func (r *pollRepo) Create(_ context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.groups[poll.GroupID]; !ok {
		return domain.NotFound("group")
	}
	if _, ok := r.s.users[poll.CreatorID]; !ok {
		return domain.NotFound("user")
	}

	cp := copyPoll(poll)
	r.s.polls[poll.ID] = cp
	for _, opt := range cp.Options {
		r.s.options[opt.ID] = opt
	}
	return nil
}

func (r *pollRepo) GetByID(_ context.Context, id string) (*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.polls[id]
	if !ok {
		return nil, nil
	}
	return copyPoll(p), nil
}

func (r *pollRepo) ListByGroup(_ context.Context, groupID string) ([]*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	polls := []*domain.Poll{}
	for _, p := range r.s.polls {
		if p.GroupID == groupID {
			polls = append(polls, copyPoll(p))
		}
	}
	sort.Slice(polls, func(i, j int) bool {
		if !polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].CreatedAt.Before(polls[j].CreatedAt)
		}
		return polls[i].ID < polls[j].ID
	})
	return polls, nil
}

func (r *pollRepo) GetOption(_ context.Context, optionID string) (*domain.PollOption, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	opt, ok := r.s.options[optionID]
	if !ok {
		return nil, nil
	}
	cp := *opt
	return &cp, nil
}

func copyPoll(p *domain.Poll) *domain.Poll {
	cp := *p
	if p.ExpireAt != nil {
		t := *p.ExpireAt
		cp.ExpireAt = &t
	}
	cp.Options = make([]*domain.PollOption, len(p.Options))
	for i, opt := range p.Options {
		o := *opt
		o.PollID = p.ID
		cp.Options[i] = &o
	}
	return &cp
}

type voteRepo struct{ s *Store }

func (r *voteRepo) Replace(_ context.Context, vote *domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	poll, ok := r.s.polls[vote.PollID]
	if !ok {
		return domain.NotFound("poll")
	}
	opt, ok := r.s.options[vote.OptionID]
	if !ok || opt.PollID != vote.PollID {
		return domain.ErrOptionNotInPoll
	}
	if _, ok := r.s.users[vote.UserID]; !ok {
		return domain.NotFound("user")
	}
	if !poll.IsActive(vote.VotedAt) {
		return domain.ErrPollClosed
	}

	byUser, ok := r.s.votes[vote.PollID]
	if !ok {
		byUser = make(map[string]*domain.Vote)
		r.s.votes[vote.PollID] = byUser
	}
	cp := *vote
	byUser[vote.UserID] = &cp
	return nil
}

func (r *voteRepo) ListByPoll(_ context.Context, pollID string) ([]*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	votes := make([]*domain.Vote, 0, len(r.s.votes[pollID]))
	for _, v := range r.s.votes[pollID] {
		cp := *v
		votes = append(votes, &cp)
	}
	sort.Slice(votes, func(i, j int) bool {
		if !votes[i].VotedAt.Equal(votes[j].VotedAt) {
			return votes[i].VotedAt.Before(votes[j].VotedAt)
		}
		return votes[i].ID < votes[j].ID
	})
	return votes, nil
}
