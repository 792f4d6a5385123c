package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/board-service/internal/api/http"
	"github.com/spec-kit/board-service/internal/api/http/handlers"
	"github.com/spec-kit/board-service/internal/auth"
	"github.com/spec-kit/board-service/internal/config"
	"github.com/spec-kit/board-service/internal/events"
	"github.com/spec-kit/board-service/internal/observability"
	"github.com/spec-kit/board-service/internal/persistence"
	"github.com/spec-kit/board-service/internal/repository"
	"github.com/spec-kit/board-service/internal/service"
	sessionregistry "github.com/spec-kit/board-service/internal/session"
	"github.com/spec-kit/board-service/internal/worker"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "board-service",
		Short: "Board service with token and session authentication",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML file of environment overrides")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Print a random base64 secret for AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := auth.GenerateSecret()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	})

	return cmd
}

// store is the backend-neutral view of a storage driver.
type store interface {
	handlers.Pinger
	Close() error
}

func serve(configPath string) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		db     store
		users  repository.UserRepository
		boards repository.BoardRepository
	)
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		lite, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		db = lite
		users = repository.NewSQLiteUserRepository(lite.DB)
		boards = repository.NewSQLiteBoardRepository(lite.DB)
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		db = pg
		users = repository.NewUserRepository(pg.Pool)
		boards = repository.NewBoardRepository(pg.Pool)
	}
	defer db.Close() //nolint:errcheck

	deps := map[string]handlers.Pinger{cfg.Storage.Driver: db}
	if redis := persistence.NewRedis(ctx, cfg.Redis, logger); redis != nil {
		defer redis.Close() //nolint:errcheck
		deps["redis"] = redis
	}

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	metrics := observability.NewMetrics("board")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	userService := service.NewUserService(service.UserDependencies{
		Users:       users,
		Tokens:      tokens,
		Sessions:    sessionregistry.NewRegistry(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
		BcryptCost:  cfg.Auth.BcryptCost,
		MaxInactive: cfg.Session.MaxInactive(),
	})
	boardService := service.NewBoardService(boards, users, logger)

	sessions := session.New(session.Config{
		Expiration:     cfg.Session.MaxInactive(),
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Users:   handlers.NewUsersHandler(userService, sessions),
		Boards:  handlers.NewBoardsHandler(boardService),
		Gate:    auth.NewGate(tokens, users, cfg.Auth, logger, metrics),
		Metrics: metrics.Handler(),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
