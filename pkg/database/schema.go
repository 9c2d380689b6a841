package database

// Ids are TEXT so malformed identifiers in URLs resolve to "not found"
// instead of a cast error.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL,
		email           TEXT NOT NULL,
		password_digest TEXT NOT NULL,
		bio             TEXT NOT NULL DEFAULT '',
		avatar          TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,

	`CREATE TABLE IF NOT EXISTS user_group (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		creator_id  TEXT NOT NULL REFERENCES users (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS user_group_created_idx ON user_group (created_at, id)`,

	`CREATE TABLE IF NOT EXISTS group_member (
		group_id  TEXT NOT NULL REFERENCES user_group (id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL REFERENCES users (id),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS poll (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		group_id    TEXT NOT NULL REFERENCES user_group (id) ON DELETE CASCADE,
		creator_id  TEXT NOT NULL REFERENCES users (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		expire_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS poll_group_idx ON poll (group_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS poll_option (
		id       TEXT PRIMARY KEY,
		poll_id  TEXT NOT NULL REFERENCES poll (id) ON DELETE CASCADE,
		text     TEXT NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE (id, poll_id),
		UNIQUE (poll_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS vote (
		id        TEXT PRIMARY KEY,
		option_id TEXT NOT NULL,
		poll_id   TEXT NOT NULL,
		user_id   TEXT NOT NULL REFERENCES users (id),
		voted_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		FOREIGN KEY (option_id, poll_id) REFERENCES poll_option (id, poll_id) ON DELETE CASCADE,
		UNIQUE (poll_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS vote_option_idx ON vote (option_id)`,
}

const postgresDrop = `DROP TABLE IF EXISTS vote, poll_option, poll, group_member, user_group, users CASCADE`

const postgresTruncate = `TRUNCATE vote, poll_option, poll, group_member, user_group, users CASCADE`
