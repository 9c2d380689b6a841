package repository

import (
	"context"
	"time"

	"bolt-api/internal/domain"
)

// Lookups return (nil, nil) when the entity does not exist. Mutations
// referencing missing rows return an error wrapping domain.ErrNotFound.

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a new user. Unique violations map to
	// domain.ErrDuplicateEmail or domain.ErrDuplicateUsername.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by exact email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by exact username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListByIDs returns the users with the given ids, in the order of ids.
	// Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	// Update persists username and bio of an existing user
	Update(ctx context.Context, user *domain.User) error

	// Search matches query case-insensitively against username or email,
	// ordered by username
	Search(ctx context.Context, query string, limit int) ([]*domain.User, error)
}

// GroupRepository defines the interface for groups and their membership
type GroupRepository interface {
	// Create inserts the group and its creator's membership atomically
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group with its member ids in join order
	GetByID(ctx context.Context, id string) (*domain.Group, error)

	// List returns every group ordered by (created_at, id)
	List(ctx context.Context) ([]*domain.Group, error)

	// AddMember adds userID to the group. Adding an existing member is a no-op.
	AddMember(ctx context.Context, groupID, userID string, joinedAt time.Time) error
}

// PollRepository defines the interface for polls and their options
type PollRepository interface {
	// Create inserts the poll and all of its options atomically
	Create(ctx context.Context, poll *domain.Poll) error

	// GetByID retrieves a poll with its options in creation order
	GetByID(ctx context.Context, id string) (*domain.Poll, error)

	// ListByGroup returns the polls of a group ordered by (created_at, id)
	ListByGroup(ctx context.Context, groupID string) ([]*domain.Poll, error)

	// GetOption retrieves a single option by ID
	GetOption(ctx context.Context, optionID string) (*domain.PollOption, error)
}

// VoteRepository defines the interface for vote operations
type VoteRepository interface {
	// Replace atomically retracts the user's existing vote on vote.PollID,
	// if any, and records vote in its place. It returns domain.ErrPollClosed
	// when the poll has expired at vote.VotedAt.
	Replace(ctx context.Context, vote *domain.Vote) error

	// ListByPoll returns the votes of a poll ordered by (voted_at, id)
	ListByPoll(ctx context.Context, pollID string) ([]*domain.Vote, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users  UserRepository
	Groups GroupRepository
	Polls  PollRepository
	Votes  VoteRepository
}
