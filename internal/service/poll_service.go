package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxExpireDays = 3650

// PollConfig controls poll expiry
type PollConfig struct {
	DefaultExpireDays int
	// AllowOpenEnded lets expire_days = 0 create a poll that never closes
	AllowOpenEnded bool
}

type PollService struct {
	repos  *repository.Repositories
	cfg    PollConfig
	now    Clock
	logger *zap.Logger
}

func NewPollService(repos *repository.Repositories, cfg PollConfig, logger *zap.Logger) *PollService {
	if cfg.DefaultExpireDays <= 0 {
		cfg.DefaultExpireDays = 7
	}
	return &PollService{
		repos:  repos,
		cfg:    cfg,
		now:    systemClock,
		logger: logger,
	}
}

// WithClock replaces the clock used for expiry decisions
func (s *PollService) WithClock(now Clock) *PollService {
	s.now = now
	return s
}

// CreatePoll persists a poll and its options atomically
func (s *PollService) CreatePoll(ctx context.Context, in domain.CreatePollInput) (*domain.PollView, error) {
	title := strings.TrimSpace(in.Title)
	options := make([]string, 0, len(in.Options))
	for _, text := range in.Options {
		if t := strings.TrimSpace(text); t != "" {
			options = append(options, t)
		}
	}

	expireDays := s.cfg.DefaultExpireDays
	if in.ExpireDays != nil {
		expireDays = *in.ExpireDays
	}

	verr := domain.NewValidationError()
	if title == "" {
		verr.Add("title", "Poll question is required")
	}
	if len(options) < 2 {
		verr.Add("options", "At least 2 options are required")
	}
	switch {
	case expireDays < 0:
		verr.Add("expire_days", "Expire days cannot be negative")
	case expireDays == 0 && !s.cfg.AllowOpenEnded:
		verr.Add("expire_days", "Expire days must be at least 1")
	case expireDays > maxExpireDays:
		verr.Add("expire_days", fmt.Sprintf("Expire days must be at most %d", maxExpireDays))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	group, err := s.repos.Groups.GetByID(ctx, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	if group == nil {
		return nil, domain.NotFound("group")
	}

	creator, err := s.repos.Users.GetByID(ctx, in.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}
	if creator == nil {
		return nil, domain.NotFound("user")
	}

	now := s.now()
	poll := &domain.Poll{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		GroupID:     group.ID,
		CreatorID:   creator.ID,
		CreatedAt:   now,
	}
	if expireDays > 0 {
		expireAt := now.AddDate(0, 0, expireDays)
		poll.ExpireAt = &expireAt
	}
	for i, text := range options {
		poll.Options = append(poll.Options, &domain.PollOption{
			ID:       uuid.NewString(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		})
	}

	if err := s.repos.Polls.Create(ctx, poll); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	s.logger.Info("Poll created",
		zap.String("poll_id", poll.ID),
		zap.String("group_id", poll.GroupID),
		zap.Int("options", len(poll.Options)))

	return BuildPollView(poll, nil, now, true), nil
}

// CastVote records userID's choice of optionID, replacing any earlier vote
// by the same user on the poll
func (s *PollService) CastVote(ctx context.Context, pollID, optionID, userID string) (*domain.PollView, error) {
	poll, err := s.repos.Polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	if poll == nil {
		return nil, domain.NotFound("poll")
	}

	option, err := s.repos.Polls.GetOption(ctx, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load option: %w", err)
	}
	if option == nil {
		return nil, domain.NotFound("option")
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domain.NotFound("user")
	}

	if option.PollID != poll.ID {
		return nil, domain.ErrOptionNotInPoll
	}

	// Replace checks expiry again inside its transaction using VotedAt
	now := s.now()
	if !poll.IsActive(now) {
		return nil, domain.ErrPollClosed
	}

	vote := &domain.Vote{
		ID:       uuid.NewString(),
		OptionID: option.ID,
		PollID:   poll.ID,
		UserID:   user.ID,
		VotedAt:  now,
	}
	if err := s.repos.Votes.Replace(ctx, vote); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOptionNotInPoll) || errors.Is(err, domain.ErrPollClosed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	s.logger.Info("Vote cast",
		zap.String("poll_id", poll.ID),
		zap.String("option_id", option.ID),
		zap.String("user_id", user.ID))

	return s.view(ctx, poll, true)
}

// GetPoll returns the poll with per-option voter lists
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*domain.PollView, error) {
	poll, err := s.repos.Polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	if poll == nil {
		return nil, domain.NotFound("poll")
	}
	return s.view(ctx, poll, true)
}

// ListGroupPolls returns the polls of a group with vote counts only
func (s *PollService) ListGroupPolls(ctx context.Context, groupID string) ([]*domain.PollView, error) {
	polls, err := s.repos.Polls.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	views := make([]*domain.PollView, 0, len(polls))
	for _, poll := range polls {
		view, err := s.view(ctx, poll, false)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *PollService) view(ctx context.Context, poll *domain.Poll, withVoters bool) (*domain.PollView, error) {
	votes, err := s.repos.Votes.ListByPoll(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return BuildPollView(poll, votes, s.now(), withVoters), nil
}
