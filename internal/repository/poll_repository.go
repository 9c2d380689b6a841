package repository

import (
	"context"
	"errors"
	"fmt"

	"bolt-api/internal/domain"
	"bolt-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PollRepo struct {
	db *database.PostgresDB
}

func NewPollRepository(db *database.PostgresDB) *PollRepo {
	return &PollRepo{db: db}
}

// Create inserts a poll and its options in one transaction
func (r *PollRepo) Create(ctx context.Context, poll *domain.Poll) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO poll (id, title, description, group_id, creator_id, created_at, expire_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, poll.ID, poll.Title, poll.Description, poll.GroupID, poll.CreatorID, poll.CreatedAt, poll.ExpireAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, opt := range poll.Options {
			batch.Queue(`
				INSERT INTO poll_option (id, poll_id, text, position)
				VALUES ($1, $2, $3, $4)
			`, opt.ID, poll.ID, opt.Text, opt.Position)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if nf := foreignKeyNotFound(err); nf != nil {
			return nf
		}
		return fmt.Errorf("failed to create poll: %w", err)
	}

	return nil
}

// GetByID gets a poll with its options
func (r *PollRepo) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	poll, err := scanPoll(r.db.Pool.QueryRow(ctx, `
		SELECT id, title, description, group_id, creator_id, created_at, expire_at
		FROM poll
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := r.options(ctx, []string{poll.ID})
	if err != nil {
		return nil, err
	}
	poll.Options = options[poll.ID]

	return poll, nil
}

// ListByGroup gets the polls of a group with their options
func (r *PollRepo) ListByGroup(ctx context.Context, groupID string) ([]*domain.Poll, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, description, group_id, creator_id, created_at, expire_at
		FROM poll
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	polls := []*domain.Poll{}
	ids := []string{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
		ids = append(ids, poll.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	options, err := r.options(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, poll := range polls {
		poll.Options = options[poll.ID]
	}

	return polls, nil
}

// GetOption gets a single poll option
func (r *PollRepo) GetOption(ctx context.Context, optionID string) (*domain.PollOption, error) {
	var opt domain.PollOption
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, poll_id, text, position
		FROM poll_option
		WHERE id = $1
	`, optionID).Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll option: %w", err)
	}
	return &opt, nil
}

func (r *PollRepo) options(ctx context.Context, pollIDs []string) (map[string][]*domain.PollOption, error) {
	options := make(map[string][]*domain.PollOption, len(pollIDs))
	if len(pollIDs) == 0 {
		return options, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, poll_id, text, position
		FROM poll_option
		WHERE poll_id = ANY($1)
		ORDER BY poll_id, position
	`, pollIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list poll options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt domain.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options[opt.PollID] = append(options[opt.PollID], &opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list poll options: %w", err)
	}

	return options, nil
}

func scanPoll(row pgx.Row) (*domain.Poll, error) {
	var p domain.Poll
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.GroupID, &p.CreatorID, &p.CreatedAt, &p.ExpireAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
