package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andressep95/session-auth/internal/auth"
	"github.com/andressep95/session-auth/internal/config"
	"github.com/andressep95/session-auth/internal/handler"
	"github.com/andressep95/session-auth/internal/handler/middleware"
	"github.com/andressep95/session-auth/internal/logging"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/repository/memory"
	"github.com/andressep95/session-auth/internal/repository/postgres"
	"github.com/andressep95/session-auth/internal/repository/redisstore"
	"github.com/andressep95/session-auth/internal/service"
	"github.com/andressep95/session-auth/pkg/email"
	"github.com/andressep95/session-auth/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "migrate",
				Usage:   "Apply database migrations before serving",
				EnvVars: []string{"AUTO_MIGRATE"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := setupLogger(cfg.Log)
			return serve(c.Context, cfg, c.Bool("migrate"), logger)
		},
	}
}

func setupLogger(cfg config.LogConfig) zerolog.Logger {
	logger := logging.New(cfg.Level, cfg.Format, os.Stderr)
	log.Logger = logger
	return logger
}

// components are the long lived dependencies of the server.
type components struct {
	users           repository.UserRepository
	durableSessions repository.SessionRepository
	notifier        email.Notifier
	checks          map[string]handler.Check
	closers         []func() error
}

func (c *components) close(logger zerolog.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logger.Warn().Err(err).Msg("error closing resource")
		}
	}
}

func buildComponents(ctx context.Context, cfg *config.Config, migrate bool, logger zerolog.Logger) (*components, error) {
	comp := &components{
		users:  memory.NewUserRepository(),
		checks: map[string]handler.Check{},
	}

	var db *sqlx.DB
	if cfg.Storage.Backend == "postgres" {
		var err error
		db, err = initDB(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		comp.closers = append(comp.closers, db.Close)
		comp.checks["database"] = db.PingContext
		logger.Info().Msg("database connection established")

		if migrate {
			if err := postgres.RunMigrations(ctx, db.DB); err != nil {
				comp.close(logger)
				return nil, err
			}
			logger.Info().Msg("migrations applied")
		}
		comp.users = postgres.NewUserRepository(db)
	}

	if cfg.Auth.Type == auth.TypeSessionDurable {
		switch cfg.Storage.SessionStore {
		case "redis":
			client, err := initRedis(ctx, cfg)
			if err != nil {
				comp.close(logger)
				return nil, fmt.Errorf("failed to initialize Redis: %w", err)
			}
			comp.closers = append(comp.closers, client.Close)
			comp.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			comp.durableSessions = redisstore.NewSessionRepository(client, redisTTL(cfg.Auth.SessionDuration))
			logger.Info().Msg("redis connection established")
		default:
			comp.durableSessions = postgres.NewSessionRepository(db)
		}
	}

	if cfg.Email.Enabled {
		notifier, err := email.NewResendNotifier(email.Config{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			ResetURL:  cfg.Email.ResetURL,
			Timeout:   cfg.Email.Timeout,
		}, logger)
		if err != nil {
			comp.close(logger)
			return nil, fmt.Errorf("failed to initialize email: %w", err)
		}
		comp.notifier = notifier
		logger.Info().Msg("email delivery enabled")
	}

	return comp, nil
}

// redisTTL keeps a session key one minute past the session duration. A
// duration of zero or less keeps it forever.
func redisTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Minute
}

func newServer(cfg *config.Config, comp *components, logger zerolog.Logger) (*fiber.App, error) {
	authenticator, err := auth.New(cfg.Auth, auth.Deps{
		Users:           comp.users,
		DurableSessions: comp.durableSessions,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	opts := []service.Option{service.WithKeepResetToken(cfg.Auth.KeepResetToken)}
	if comp.notifier != nil {
		opts = append(opts, service.WithNotifier(comp.notifier))
	}
	authService := service.NewAuthService(comp.users, logger, opts...)

	validate := validator.NewValidator()
	h := handler.Handlers{
		Index:   handler.NewIndexHandler(comp.users),
		Users:   handler.NewUserHandler(comp.users),
		Account: handler.NewAccountHandler(authService, validate),
		Health:  handler.NewHealthHandler(comp.checks),
	}
	if sa, ok := authenticator.(auth.SessionAuthenticator); ok {
		h.Session = handler.NewSessionAuthHandler(sa, comp.users, validate)
	}

	app := fiber.New(fiber.Config{
		AppName:               "session-auth",
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware(logger))
	app.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))

	handler.SetupRoutes(app, h, middleware.Gatekeeper(authenticator, cfg.Auth.ExcludedPaths))

	logger.Info().
		Str("auth_type", cfg.Auth.Type).
		Str("storage", cfg.Storage.Backend).
		Msg("routes registered")
	return app, nil
}

func serve(ctx context.Context, cfg *config.Config, migrate bool, logger zerolog.Logger) error {
	comp, err := buildComponents(ctx, cfg, migrate, logger)
	if err != nil {
		return err
	}
	defer comp.close(logger)

	app, err := newServer(cfg, comp, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		logger.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("server starting")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}
