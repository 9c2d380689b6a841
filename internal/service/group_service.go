package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minSearchQueryLength = 2
	searchLimit          = 50
	minGroupNameLength   = 3
)

type GroupService struct {
	repos  *repository.Repositories
	polls  *PollService
	now    Clock
	logger *zap.Logger
}

func NewGroupService(repos *repository.Repositories, polls *PollService, logger *zap.Logger) *GroupService {
	return &GroupService{
		repos:  repos,
		polls:  polls,
		now:    systemClock,
		logger: logger,
	}
}

// WithClock replaces the clock used for timestamps
func (s *GroupService) WithClock(now Clock) *GroupService {
	s.now = now
	return s
}

// CreateGroup creates a group whose first member is its creator
func (s *GroupService) CreateGroup(ctx context.Context, name, description, creatorID string) (*domain.Group, error) {
	name = strings.TrimSpace(name)

	verr := domain.NewValidationError()
	if name == "" {
		verr.Add("name", "Group name is required")
	} else if utf8.RuneCountInString(name) < minGroupNameLength {
		verr.Add("name", "Group name must be at least 3 characters")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	creator, err := s.repos.Users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator == nil {
		return nil, domain.NotFound("user")
	}

	group := &domain.Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatorID:   creator.ID,
		CreatedAt:   s.now(),
	}
	if err := s.repos.Groups.Create(ctx, group); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("Group created",
		zap.String("group_id", group.ID),
		zap.String("creator_id", group.CreatorID))
	return group, nil
}

// GetGroup returns the group with member summaries and poll tallies
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*domain.GroupView, error) {
	group, err := s.repos.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, domain.NotFound("group")
	}

	members, err := s.repos.Users.ListByIDs(ctx, group.MemberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	polls, err := s.polls.ListGroupPolls(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	return BuildGroupView(group, members, polls), nil
}

// ListGroups returns every group ordered by creation time
func (s *GroupService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	groups, err := s.repos.Groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// SearchUsers matches query against usernames and emails, ignoring case.
// Queries shorter than two characters return nothing.
func (s *GroupService) SearchUsers(ctx context.Context, query string) ([]*domain.User, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLength {
		return []*domain.User{}, nil
	}

	users, err := s.repos.Users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// AddMember adds userID to the group. Membership only grows.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) (*domain.GroupView, error) {
	group, err := s.repos.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, domain.NotFound("group")
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.NotFound("user")
	}

	if !group.HasMember(user.ID) {
		if err := s.repos.Groups.AddMember(ctx, group.ID, user.ID, s.now()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
		s.logger.Info("Member added",
			zap.String("group_id", group.ID),
			zap.String("user_id", user.ID))
	}

	return s.GetGroup(ctx, group.ID)
}
