package main

import (
	"context"
	"fmt"
	"time"

	"github.com/andressep95/session-auth/internal/config"
	"github.com/andressep95/session-auth/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := setupLogger(cfg.Log)

			db, err := initDB(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.RunMigrations(c.Context, db.DB); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

// initDB connects to PostgreSQL, retrying while the database starts up.
func initDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sqlx.DB, error) {
	const (
		maxRetries    = 5
		retryInterval = 2 * time.Second
	)

	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
		if err == nil {
			break
		}

		logger.Warn().Err(err).Int("attempt", i+1).Int("max", maxRetries).Msg("failed to connect to database")
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryInterval):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
