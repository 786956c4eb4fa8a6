package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/notification-service/internal/api/http"
	"github.com/spec-kit/notification-service/internal/api/http/handlers"
	"github.com/spec-kit/notification-service/internal/auth"
	"github.com/spec-kit/notification-service/internal/config"
	"github.com/spec-kit/notification-service/internal/events"
	"github.com/spec-kit/notification-service/internal/observability"
	"github.com/spec-kit/notification-service/internal/persistence"
	"github.com/spec-kit/notification-service/internal/repository"
	"github.com/spec-kit/notification-service/internal/service"
	"github.com/spec-kit/notification-service/internal/worker"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "api",
		Short:        "Notification service API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newHashPasswordCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			if cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required for migrate")
			}
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()
			return persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger)
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for manually provisioned users",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(parent context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("notification_service")
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	codec := auth.NewTokenCodec(cfg.Auth.JWTSecret, nil)
	issuer := auth.NewTokenIssuer(codec, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	allowList, err := auth.NewAllowList(cfg.Auth.AllowList...)
	if err != nil {
		return err
	}

	directory := service.NewUserDirectory(repository.NewUserRepository(pg.PoolHandle()), cfg.Auth.BcryptCost)

	var limiter auth.AttemptLimiter
	if cfg.Login.MaxFailedAttempts > 0 {
		redisLimiter, err := persistence.NewRedisAttemptLimiter(redis.Cmdable(), cfg.Login.MaxFailedAttempts, cfg.Login.Lockout())
		if err != nil {
			return err
		}
		limiter = redisLimiter
	}

	authorizationGate := auth.NewAuthorizationGate(codec, issuer, allowList, auth.GateOptions{
		RotateOnRefresh: cfg.Auth.RotateOnRefresh,
		Events:          dispatcher,
		Metrics:         metrics,
		Logger:          logger.Named("authorization"),
	})
	authenticationGate := auth.NewAuthenticationGate(directory, issuer, auth.LoginOptions{
		Limiter: limiter,
		Events:  dispatcher,
		Metrics: metrics,
		Logger:  logger.Named("authentication"),
	})

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Access:             handlers.NewAccessHandler(codec, authorizationGate),
		Users:              handlers.NewUserHandler(directory),
		AuthenticationGate: authenticationGate,
		AuthorizationGate:  authorizationGate,
		Metrics:            metrics,
	})

	logger.Info("allow-list loaded", zap.Strings("patterns", allowList.Patterns()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.Shutdown()
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
