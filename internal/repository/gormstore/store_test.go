package gormstore

import (
	"testing"

	"bolt-api/internal/repository"
	"bolt-api/internal/repository/repositorytest"
	"bolt-api/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseSQLiteDB(db) })

	require.NoError(t, Migrate(db))
	return NewRepositories(db)
}

func TestSQLiteStore(t *testing.T) {
	repositorytest.Run(t, newTestRepositories)
}

func TestMigrateAndDrop(t *testing.T) {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	defer func() { _ = database.CloseSQLiteDB(db) }()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db), "migrate is repeatable")
	for _, table := range sqliteTables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, Drop(db))
	for _, table := range sqliteTables {
		assert.False(t, db.Migrator().HasTable(table), table)
	}
}
