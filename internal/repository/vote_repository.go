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

type VoteRepo struct {
	db *database.PostgresDB
}

func NewVoteRepository(db *database.PostgresDB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Replace retracts the user's previous vote on the poll and records the new one.
// The unique (poll_id, user_id) index makes concurrent casts converge on one row.
// Expiry is checked against vote.VotedAt under a share lock on the poll row.
func (r *VoteRepo) Replace(ctx context.Context, vote *domain.Vote) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var expireAt *time.Time
		err := tx.QueryRow(ctx, `
			SELECT expire_at FROM poll WHERE id = $1 FOR SHARE
		`, vote.PollID).Scan(&expireAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound("poll")
		}
		if err != nil {
			return err
		}
		if expireAt != nil && !vote.VotedAt.Before(*expireAt) {
			return domain.ErrPollClosed
		}

		_, err = tx.Exec(ctx, `
			DELETE FROM vote WHERE poll_id = $1 AND user_id = $2
		`, vote.PollID, vote.UserID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO vote (id, option_id, poll_id, user_id, voted_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (poll_id, user_id) DO UPDATE
			SET id = EXCLUDED.id,
			    option_id = EXCLUDED.option_id,
			    voted_at = EXCLUDED.voted_at
		`, vote.ID, vote.OptionID, vote.PollID, vote.UserID, vote.VotedAt)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrPollClosed) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if nf := foreignKeyNotFound(err); nf != nil {
			return nf
		}
		return fmt.Errorf("failed to cast vote: %w", err)
	}

	return nil
}

// ListByPoll gets the votes of a poll in cast order
func (r *VoteRepo) ListByPoll(ctx context.Context, pollID string) ([]*domain.Vote, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, option_id, poll_id, user_id, voted_at
		FROM vote
		WHERE poll_id = $1
		ORDER BY voted_at, id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []*domain.Vote{}
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.ID, &v.OptionID, &v.PollID, &v.UserID, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	return votes, nil
}

// NewPostgresRepositories wires the pgx-backed repositories
func NewPostgresRepositories(db *database.PostgresDB) *Repositories {
	return &Repositories{
		Users:  NewUserRepository(db),
		Groups: NewGroupRepository(db),
		Polls:  NewPollRepository(db),
		Votes:  NewVoteRepository(db),
	}
}
