package gormstore

import (
	"fmt"

	"gorm.io/gorm"
)

// The vote table needs a composite foreign key that AutoMigrate cannot
// express on SQLite, so the schema is created from DDL.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		email           TEXT NOT NULL UNIQUE,
		password_digest TEXT NOT NULL,
		bio             TEXT NOT NULL DEFAULT '',
		avatar          TEXT NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_group (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		creator_id  TEXT NOT NULL REFERENCES users (id),
		created_at  DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_member (
		group_id  TEXT NOT NULL REFERENCES user_group (id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL REFERENCES users (id),
		joined_at DATETIME NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS poll (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		group_id    TEXT NOT NULL REFERENCES user_group (id) ON DELETE CASCADE,
		creator_id  TEXT NOT NULL REFERENCES users (id),
		created_at  DATETIME NOT NULL,
		expire_at   DATETIME
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
		voted_at  DATETIME NOT NULL,
		FOREIGN KEY (option_id, poll_id) REFERENCES poll_option (id, poll_id) ON DELETE CASCADE,
		UNIQUE (poll_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS vote_option_idx ON vote (option_id)`,
}

var sqliteTables = []string{"vote", "poll_option", "poll", "group_member", "user_group", "users"}

// Migrate creates the schema if it does not exist
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, stmt := range sqliteSchema {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// Drop removes every application table
func Drop(db *gorm.DB) error {
	for _, table := range sqliteTables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}
