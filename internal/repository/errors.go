package repository

import (
	"errors"
	"fmt"
	"strings"

	"bolt-api/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// foreignKeyNotFound maps a foreign key violation to the missing entity.
// Constraint names follow the Postgres defaults of the schema.
func foreignKeyNotFound(err error) error {
	code, constraint := pgErrorCode(err)
	if code != pgForeignKeyViolation {
		return nil
	}
	switch constraint {
	case "user_group_creator_id_fkey", "poll_creator_id_fkey", "group_member_user_id_fkey", "vote_user_id_fkey":
		return domain.NotFound("user")
	case "poll_group_id_fkey", "group_member_group_id_fkey":
		return domain.NotFound("group")
	case "vote_option_id_poll_id_fkey":
		return domain.ErrOptionNotInPoll
	}
	return fmt.Errorf("%s: %w", constraint, domain.ErrNotFound)
}

// EscapeLike escapes LIKE wildcards so query matches literally
func EscapeLike(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(query)
}
