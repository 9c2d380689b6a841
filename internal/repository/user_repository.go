package repository

import (
	"context"
	"errors"
	"fmt"

	"bolt-api/internal/domain"
	"bolt-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_digest, bio, avatar, created_at`

type UserRepo struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new user record
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_digest, bio, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordDigest,
		user.Bio,
		user.Avatar,
		user.CreatedAt,
	)
	if err != nil {
		if dup := userDuplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID gets a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail gets a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByUsername gets a user by username
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListByIDs gets the users with the given ids, keeping the order of ids
func (r *UserRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(byID))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// Update updates the mutable profile fields of a user
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $2, bio = $3 WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, user.ID, user.Username, user.Bio)
	if err != nil {
		if dup := userDuplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("user")
	}

	return nil
}

// Search finds users whose username or email contains query, ignoring case
func (r *UserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	sql := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, sql, EscapeLike(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordDigest,
		&u.Bio,
		&u.Avatar,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func userDuplicateError(err error) error {
	code, constraint := pgErrorCode(err)
	if code != pgUniqueViolation {
		return nil
	}
	switch constraint {
	case "users_email_key":
		return domain.ErrDuplicateEmail
	case "users_username_key":
		return domain.ErrDuplicateUsername
	}
	return fmt.Errorf("unique violation on %s: %w", constraint, err)
}
