// Package app assembles the service from configuration: it opens the selected
// credential store, the optional login throttle, builds the services and the
// HTTP router, and runs the server until its context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storerating/rating-platform/internal/api"
	"github.com/storerating/rating-platform/internal/api/handler"
	"github.com/storerating/rating-platform/internal/core/ports"
	"github.com/storerating/rating-platform/internal/core/service"
	memstore "github.com/storerating/rating-platform/internal/infrastructure/db/memory"
	mongostore "github.com/storerating/rating-platform/internal/infrastructure/db/mongo"
	pgstore "github.com/storerating/rating-platform/internal/infrastructure/db/postgres"
	redisstore "github.com/storerating/rating-platform/internal/infrastructure/db/redis"
	"github.com/storerating/rating-platform/internal/infrastructure/security"
	"github.com/storerating/rating-platform/internal/pkg/config"
)

const defaultShutdownTimeout = 10 * time.Second

type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	echo    *echo.Echo
	closers []func(context.Context) error
}

// Build opens every backend named by cfg and wires the HTTP layer. On error
// anything already opened is closed.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	checks := make(map[string]handler.Checker)

	repo, err := a.openStore(ctx, checks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	throttle, err := a.openThrottle(ctx, checks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := service.NewAuthService(repo, hasher, tokens, throttle, log)
	userService := service.NewUserService(repo, hasher, log)

	if cfg.Admin.Enabled() {
		created, err := userService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Address)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if !created {
			log.Debug().Msg("bootstrap administrator already present")
		}
	}

	a.echo = api.NewRouter(api.Deps{
		AuthService:  authService,
		UserService:  userService,
		Tokens:       tokens,
		HealthChecks: checks,
		Log:          log,
	})
	return a, nil
}

func (a *App) openStore(ctx context.Context, checks map[string]handler.Checker) (ports.UserRepository, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := pgstore.Connect(ctx, pgstore.Config{
			DSN:             a.cfg.Postgres.DSN,
			MaxOpenConns:    a.cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    a.cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: a.cfg.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		if err := pgstore.Migrate(ctx, db); err != nil {
			return nil, err
		}
		checks["postgres"] = db.PingContext
		a.log.Info().Int("max_conns", a.cfg.Postgres.MaxOpenConns).Msg("postgres store ready")
		return pgstore.NewUserRepository(db), nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:         a.cfg.Mongo.URI,
			Database:    a.cfg.Mongo.Database,
			MaxPoolSize: a.cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)

		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		checks["mongodb"] = repo.Ping
		a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("mongo store ready")
		return repo, nil

	case config.DriverMemory:
		a.log.Warn().Msg("using in-memory store; data is lost on restart")
		repo := memstore.NewUserRepository()
		checks["memory"] = repo.Ping
		return repo, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
}

// openThrottle returns nil when no Redis address is configured.
func (a *App) openThrottle(ctx context.Context, checks map[string]handler.Checker) (ports.LoginThrottle, error) {
	if a.cfg.Redis.Addr == "" {
		return nil, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	a.log.Info().
		Int("max_attempts", a.cfg.Redis.LoginMaxAttempts).
		Dur("window", a.cfg.Redis.LoginWindow).
		Msg("login throttle enabled")
	return redisstore.NewLoginThrottle(client, a.cfg.Redis.LoginMaxAttempts, a.cfg.Redis.LoginWindow), nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("http server listening")
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.log.Info().Msg("shutting down http server")
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
