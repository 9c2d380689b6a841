package container

import (
	"context"
	"fmt"
	"time"

	"bolt-api/internal/config"
	"bolt-api/internal/repository"
	"bolt-api/internal/repository/gormstore"
	"bolt-api/internal/repository/memory"
	"bolt-api/pkg/database"
	"bolt-api/pkg/logger"

	"gorm.io/gorm"
)

// Store owns the connection behind the repositories
type Store struct {
	Driver   string
	Postgres *database.PostgresDB
	SQLite   *gorm.DB
}

// OpenStore connects to the configured store and returns its repositories.
// The schema is created first when cfg.AutoMigrate is set.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Store, *repository.Repositories, error) {
	store := &Store{Driver: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
			}
		}
		store.Postgres = db
		log.Info("Connected to PostgreSQL")
		return store, repository.NewPostgresRepositories(db), nil

	case config.StoreSQLite:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := gormstore.Migrate(db); err != nil {
				_ = database.CloseSQLiteDB(db)
				return nil, nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
			}
		}
		store.SQLite = db
		log.WithField("path", cfg.SQLitePath).Info("Opened SQLite database")
		return store, gormstore.NewRepositories(db), nil

	case config.StoreMemory:
		log.Warn("Using in-memory store, data is lost on restart")
		return store, memory.NewRepositories(), nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Health pings the underlying database
func (s *Store) Health(ctx context.Context) error {
	switch {
	case s.Postgres != nil:
		return s.Postgres.Health(ctx)
	case s.SQLite != nil:
		sqlDB, err := s.SQLite.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	return nil
}

// Close releases the database connection
func (s *Store) Close() error {
	switch {
	case s.Postgres != nil:
		s.Postgres.Close()
	case s.SQLite != nil:
		return database.CloseSQLiteDB(s.SQLite)
	}
	return nil
}

const storeConnectTimeout = 15 * time.Second
