// Package gormstore implements the repository interfaces on GORM. It is used
// with SQLite for single-file deployments and local development.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewRepositories wires the GORM-backed repositories. The db must be opened
// with TranslateError enabled.
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Users:  &UserRepo{db: db},
		Groups: &GroupRepo{db: db},
		Polls:  &PollRepo{db: db},
		Votes:  &VoteRepo{db: db},
	}
}

type UserRepo struct {
	db *gorm.DB
}

// Create creates a new user record
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(userFromDomain(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// SQLite does not report which index failed
		return r.duplicateCause(ctx, user)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepo) duplicateCause(ctx context.Context, user *domain.User) error {
	var n int64
	err := r.db.WithContext(ctx).Model(&userModel{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("failed to check duplicate user: %w", err)
	}
	if n > 0 {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}

// GetByID gets a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail gets a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByUsername gets a user by username
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, arg string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where(cond, arg).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return m.toDomain(), nil
}

// ListByIDs gets the users with the given ids, keeping the order of ids
func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	var ms []userModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	byID := make(map[string]*domain.User, len(ms))
	for i := range ms {
		byID[ms[i].ID] = ms[i].toDomain()
	}

	users := make([]*domain.User, 0, len(ms))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// Update updates the mutable profile fields of a user
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{"username": user.Username, "bio": user.Bio})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateUsername
	}
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user")
	}
	return nil
}

// Search finds users whose username or email contains query, ignoring case
func (r *UserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	pattern := "%" + repository.EscapeLike(strings.ToLower(query)) + "%"

	var ms []userModel
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("username").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	users := make([]*domain.User, 0, len(ms))
	for i := range ms {
		users = append(users, ms[i].toDomain())
	}
	return users, nil
}

type GroupRepo struct {
	db *gorm.DB
}

// Create inserts the group and the creator's membership in one transaction
func (r *GroupRepo) Create(ctx context.Context, group *domain.Group) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := &groupModel{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			CreatorID:   group.CreatorID,
			CreatedAt:   group.CreatedAt,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Create(&memberModel{GroupID: group.ID, UserID: group.CreatorID, JoinedAt: group.CreatedAt}).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domain.NotFound("user")
	}
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	group.MemberIDs = []string{group.CreatorID}
	return nil
}

// GetByID gets a group with its member ids
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var m groupModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.memberIDs(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	return m.toDomain(members[m.ID]), nil
}

// List gets all groups ordered by creation
func (r *GroupRepo) List(ctx context.Context) ([]*domain.Group, error) {
	var ms []groupModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	members, err := r.memberIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	groups := make([]*domain.Group, 0, len(ms))
	for i := range ms {
		groups = append(groups, ms[i].toDomain(members[ms[i].ID]))
	}
	return groups, nil
}

// AddMember adds a user to a group, ignoring existing memberships
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID string, joinedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&memberModel{GroupID: groupID, UserID: userID, JoinedAt: joinedAt}).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return missingReference(ctx, r.db,
			reference{"group", &groupModel{}, groupID},
			reference{"user", &userModel{}, userID})
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *GroupRepo) memberIDs(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(groupIDs))
	if len(groupIDs) == 0 {
		return members, nil
	}

	var ms []memberModel
	err := r.db.WithContext(ctx).
		Where("group_id IN ?", groupIDs).
		Order("joined_at, user_id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	for _, m := range ms {
		members[m.GroupID] = append(members[m.GroupID], m.UserID)
	}
	return members, nil
}

type PollRepo struct {
	db *gorm.DB
}

// Create inserts a poll and its options in one transaction
func (r *PollRepo) Create(ctx context.Context, poll *domain.Poll) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := &pollModel{
			ID:          poll.ID,
			Title:       poll.Title,
			Description: poll.Description,
			GroupID:     poll.GroupID,
			CreatorID:   poll.CreatorID,
			CreatedAt:   poll.CreatedAt,
			ExpireAt:    poll.ExpireAt,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		options := make([]*optionModel, 0, len(poll.Options))
		for _, opt := range poll.Options {
			options = append(options, &optionModel{ID: opt.ID, PollID: poll.ID, Text: opt.Text, Position: opt.Position})
		}
		if len(options) == 0 {
			return nil
		}
		return tx.Create(&options).Error
	})
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return missingReference(ctx, r.db,
			reference{"group", &groupModel{}, poll.GroupID},
			reference{"user", &userModel{}, poll.CreatorID})
	}
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}
	return nil
}

// GetByID gets a poll with its options
func (r *PollRepo) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	var m pollModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.options(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	return m.toDomain(options[m.ID]), nil
}

// ListByGroup gets the polls of a group with their options
func (r *PollRepo) ListByGroup(ctx context.Context, groupID string) ([]*domain.Poll, error) {
	var ms []pollModel
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	options, err := r.options(ctx, ids)
	if err != nil {
		return nil, err
	}

	polls := make([]*domain.Poll, 0, len(ms))
	for i := range ms {
		polls = append(polls, ms[i].toDomain(options[ms[i].ID]))
	}
	return polls, nil
}

// GetOption gets a single poll option
func (r *PollRepo) GetOption(ctx context.Context, optionID string) (*domain.PollOption, error) {
	var m optionModel
	err := r.db.WithContext(ctx).Where("id = ?", optionID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll option: %w", err)
	}
	return m.toDomain(), nil
}

func (r *PollRepo) options(ctx context.Context, pollIDs []string) (map[string][]*domain.PollOption, error) {
	options := make(map[string][]*domain.PollOption, len(pollIDs))
	if len(pollIDs) == 0 {
		return options, nil
	}

	var ms []optionModel
	err := r.db.WithContext(ctx).
		Where("poll_id IN ?", pollIDs).
		Order("poll_id, position").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list poll options: %w", err)
	}

	for i := range ms {
		options[ms[i].PollID] = append(options[ms[i].PollID], ms[i].toDomain())
	}
	return options, nil
}

type VoteRepo struct {
	db *gorm.DB
}

// Replace retracts the user's previous vote on the poll and records the new one
func (r *VoteRepo) Replace(ctx context.Context, vote *domain.Vote) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var poll pollModel
		err := tx.Select("id", "expire_at").Where("id = ?", vote.PollID).Take(&poll).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("poll")
		}
		if err != nil {
			return err
		}

		var n int64
		err = tx.Model(&optionModel{}).
			Where("id = ? AND poll_id = ?", vote.OptionID, vote.PollID).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrOptionNotInPoll
		}
		if !poll.toDomain(nil).IsActive(vote.VotedAt) {
			return domain.ErrPollClosed
		}

		err = tx.Where("poll_id = ? AND user_id = ?", vote.PollID, vote.UserID).
			Delete(&voteModel{}).Error
		if err != nil {
			return err
		}

		m := &voteModel{
			ID:       vote.ID,
			OptionID: vote.OptionID,
			PollID:   vote.PollID,
			UserID:   vote.UserID,
			VotedAt:  vote.VotedAt,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "option_id", "voted_at"}),
		}).Create(m).Error
	})
	switch {
	case errors.Is(err, domain.ErrOptionNotInPoll), errors.Is(err, domain.ErrPollClosed), errors.Is(err, domain.ErrNotFound):
		return err
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NotFound("user")
	case err != nil:
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// ListByPoll gets the votes of a poll in cast order
func (r *VoteRepo) ListByPoll(ctx context.Context, pollID string) ([]*domain.Vote, error) {
	var ms []voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("voted_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	votes := make([]*domain.Vote, 0, len(ms))
	for i := range ms {
		votes = append(votes, ms[i].toDomain())
	}
	return votes, nil
}

// reference is a row a write points at through a foreign key
type reference struct {
	entity string
	model  interface{}
	id     string
}

// missingReference names the first absent row after a foreign key
// violation. SQLite does not report which constraint failed.
func missingReference(ctx context.Context, db *gorm.DB, refs ...reference) error {
	for _, ref := range refs {
		var n int64
		err := db.WithContext(ctx).Model(ref.model).Where("id = ?", ref.id).Count(&n).Error
		if err == nil && n == 0 {
			return domain.NotFound(ref.entity)
		}
	}
	return domain.ErrNotFound
}
