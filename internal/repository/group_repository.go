package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bolt-api/internal/domain"
	"bolt-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type GroupRepo struct {
	db *database.PostgresDB
}

func NewGroupRepository(db *database.PostgresDB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create inserts the group and the creator's membership in one transaction
func (r *GroupRepo) Create(ctx context.Context, group *domain.Group) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_group (id, name, description, creator_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, group.ID, group.Name, group.Description, group.CreatorID, group.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO group_member (group_id, user_id, joined_at)
			VALUES ($1, $2, $3)
		`, group.ID, group.CreatorID, group.CreatedAt)
		return err
	})
	if err != nil {
		if nf := foreignKeyNotFound(err); nf != nil {
			return nf
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	group.MemberIDs = []string{group.CreatorID}
	return nil
}

// GetByID gets a group with its member ids
func (r *GroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, creator_id, created_at
		FROM user_group
		WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.memberIDs(ctx, []string{g.ID})
	if err != nil {
		return nil, err
	}
	g.MemberIDs = members[g.ID]
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}

	return &g, nil
}

// List gets all groups ordered by creation
func (r *GroupRepo) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, description, creator_id, created_at
		FROM user_group
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*domain.Group{}
	ids := []string{}
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	members, err := r.memberIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.MemberIDs = members[g.ID]
		if g.MemberIDs == nil {
			g.MemberIDs = []string{}
		}
	}

	return groups, nil
}

// AddMember adds a user to a group, ignoring existing memberships
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID string, joinedAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO group_member (group_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`, groupID, userID, joinedAt)
	if err != nil {
		if nf := foreignKeyNotFound(err); nf != nil {
			return nf
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *GroupRepo) memberIDs(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(groupIDs))
	if len(groupIDs) == 0 {
		return members, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT group_id, user_id
		FROM group_member
		WHERE group_id = ANY($1)
		ORDER BY joined_at, user_id
	`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, userID string
		if err := rows.Scan(&groupID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members[groupID] = append(members[groupID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	return members, nil
}
