// Package server wires the auth API: configuration, Postgres repositories,
// the auth service, the HTTP server and the background janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/dmitrijs2005/admagic/internal/server/config"
	"github.com/dmitrijs2005/admagic/internal/server/httpapi"
	"github.com/dmitrijs2005/admagic/internal/server/mailer"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/admagic/internal/server/services"
	"golang.org/x/sync/errgroup"
)

// limiterIdle is how long a client IP bucket survives without traffic.
const limiterIdle = 10 * time.Minute

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	repos   repomanager.RepositoryManager
	auth    *services.AuthService
	limiter *httpapi.RateLimiter
	metrics *httpapi.Metrics
	server  *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.NewProductionZap(c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager()), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	auth := services.NewAuthService(db, rm, mailer.NewLogMailer(logger.With("module", "mailer")), logger, c)
	limiter := httpapi.NewRateLimiter(c.RateLimit, c.RateBurst, logger)
	metrics := httpapi.NewMetrics()

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		repos:   rm,
		auth:    auth,
		limiter: limiter,
		metrics: metrics,
		server:  httpapi.NewServer(c.HTTPAddr, auth, logger, limiter, metrics),
	}
}

// Run migrates the schema and then serves until ctx is cancelled or a
// component fails.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.server.Run(gCtx) })
	g.Go(func() error { return app.runJanitor(gCtx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) runJanitor(ctx context.Context) error {
	if app.config.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", app.config.CleanupInterval)
	}
	ticker := time.NewTicker(app.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			app.sweep(ctx)
		}
	}
}

// sweep purges expired records and idle limiter buckets. Failures are logged
// and retried on the next tick.
func (app *App) sweep(ctx context.Context) {
	n, err := app.auth.CleanupExpired(ctx)
	app.metrics.Purged(n)
	if err != nil {
		app.logger.Error(ctx, "cleanup failed", "error", err)
	} else if n > 0 {
		app.logger.Info(ctx, "expired records purged", "count", n)
	}

	if dropped := app.limiter.Cleanup(limiterIdle); dropped > 0 {
		app.logger.Debug(ctx, "idle rate limit buckets dropped", "count", dropped)
	}
}

func (app *App) Close() error {
	if z, ok := app.logger.(*logging.ZapLogger); ok {
		_ = z.Sync()
	}
	return app.db.Close()
}
