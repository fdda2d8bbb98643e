package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/admagic/internal/client/authctx"
	"github.com/dmitrijs2005/admagic/internal/client/client"
	"github.com/dmitrijs2005/admagic/internal/client/config"
	"github.com/dmitrijs2005/admagic/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/admagic/internal/client/services"
	"github.com/dmitrijs2005/admagic/internal/client/session"
	"github.com/dmitrijs2005/admagic/internal/client/store"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	provider *authctx.Provider
	tracker  *session.Tracker
	logger   logging.Logger
	db       *sql.DB
	reader   *bufio.Reader
	out      io.Writer

	mu   sync.Mutex
	Mode Mode
}

// NewApp is the composition root: it builds the credential store, the API
// client, the auth services, the session tracker and the provider, and
// hands each its dependencies explicitly.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	var (
		st store.Store
		db *sql.DB
	)
	if c.Ephemeral {
		st = store.NewMemoryStore()
	} else {
		var err error
		db, err = client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
			return nil, err
		}
		st = store.NewSQLiteStore(metadata.NewSQLiteRepository(db))
	}

	apiClient, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	fetcher := services.NewSessionFetcher(apiClient, st, logger)
	tracker := session.NewTracker(fetcher, logger)
	auth := services.NewAuthService(apiClient, st, logger)

	return &App{
		config:   c,
		provider: authctx.NewProvider(tracker, auth),
		tracker:  tracker,
		logger:   logger,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run attaches the provider to ctx and blocks in the REPL until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(authctx.WithProvider(ctx, a.provider))
}

func (a *App) Close() {
	a.tracker.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing database", "error", err)
		}
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "switched mode", "mode", string(mode))
	}
}

// applyView derives the connectivity mode from a settled view. Only a
// transport failure means offline; a rejected credential is a reachable
// server.
func (a *App) applyView(v authctx.View) {
	if v.IsLoading {
		return
	}
	if errors.Is(v.Err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) isLoggedIn() bool {
	return a.provider != nil && a.provider.View().IsAuthenticated
}

// WatchSession applies every published view to the connectivity mode until
// ctx is done.
func (a *App) WatchSession(ctx context.Context) {
	views, stop := a.provider.Subscribe(ctx)
	defer stop()
	for v := range views {
		a.applyView(v)
	}
}

// StartSessionWatcher revalidates the session every interval, the way a
// browser tab refetches on focus.
// A non-positive interval disables revalidation.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.logger.Warn(ctx, "session revalidation disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.provider.Refetch(ctx)
		case <-ctx.Done():
			return
		}
	}
}
