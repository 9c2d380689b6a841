package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"bolt-api/internal/config"
	"bolt-api/internal/container"
	"bolt-api/internal/repository/gormstore"
	"bolt-api/pkg/logger"
)

const commandTimeout = 2 * time.Minute

var flagStoreDriver = &cli.StringFlag{
	Name:    "store",
	Usage:   "Store driver to operate on (postgres or sqlite), overrides STORE_DRIVER",
	EnvVars: []string{"MIGRATE_STORE_DRIVER"},
}

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "Manage the bolt-api database schema and demo data",
		Flags: []cli.Flag{
			flagStoreDriver,
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Create all tables",
				Action: func(cCtx *cli.Context) error {
					return withStore(cCtx, true, func(ctx context.Context, store *container.Store) error {
						fmt.Println("✅ All tables created successfully")
						return nil
					})
				},
			},
			{
				Name:  "drop",
				Usage: "Drop all tables",
				Action: func(cCtx *cli.Context) error {
					return withStore(cCtx, false, func(ctx context.Context, store *container.Store) error {
						var err error
						switch {
						case store.Postgres != nil:
							err = store.Postgres.Drop(ctx)
						case store.SQLite != nil:
							err = gormstore.Drop(store.SQLite)
						}
						if err != nil {
							return fmt.Errorf("failed to drop tables: %w", err)
						}
						fmt.Println("✅ All tables dropped successfully")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "Create the schema and insert demo users, groups, polls and votes",
				Action: func(cCtx *cli.Context) error {
					cfg, log, err := load(cCtx, true)
					if err != nil {
						return err
					}

					c, err := container.New(cfg, log)
					if err != nil {
						return err
					}
					defer c.Close()

					ctx, cancel := context.WithTimeout(cCtx.Context, commandTimeout)
					defer cancel()

					summary, err := seed(ctx, c.Services)
					if err != nil {
						return fmt.Errorf("failed to seed data: %w", err)
					}
					fmt.Printf("✅ Data seeded successfully: %d users, %d groups, %d polls, %d votes\n",
						summary.Users, summary.Groups, summary.Polls, summary.Votes)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// load reads the configuration and rejects the memory store, which has
// nothing to migrate
func load(cCtx *cli.Context, autoMigrate bool) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if driver := cCtx.String(flagStoreDriver.Name); driver != "" {
		cfg.StoreDriver = driver
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	if cfg.StoreDriver == config.StoreMemory {
		return nil, nil, fmt.Errorf("the memory store cannot be migrated, set STORE_DRIVER to postgres or sqlite")
	}
	cfg.AutoMigrate = autoMigrate

	log, err := logger.NewForEnvironment(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func withStore(cCtx *cli.Context, autoMigrate bool, fn func(ctx context.Context, store *container.Store) error) error {
	cfg, log, err := load(cCtx, autoMigrate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cCtx.Context, commandTimeout)
	defer cancel()

	store, _, err := container.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, store)
}
