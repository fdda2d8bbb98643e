package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/admagic/internal/dbx"
	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/dmitrijs2005/admagic/internal/server/config"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/users"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/verifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMigrations runs real Postgres repositories but skips goose.
type stubMigrations struct {
	pg  *repomanager.PostgresRepositoryManager
	err error
}

func (m *stubMigrations) RunMigrations(context.Context, *sql.DB) error { return m.err }
func (m *stubMigrations) Users(db dbx.DBTX) users.Repository           { return m.pg.Users(db) }
func (m *stubMigrations) Sessions(db dbx.DBTX) sessions.Repository     { return m.pg.Sessions(db) }
func (m *stubMigrations) Verifications(db dbx.DBTX) verifications.Repository {
	return m.pg.Verifications(db)
}

func newTestApp(t *testing.T, migErr error) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.CleanupInterval = time.Hour

	rm := &stubMigrations{pg: repomanager.NewPostgresRepositoryManager(), err: migErr}
	return newApp(cfg, logging.Nop(), db, rm), mock
}

func TestRun_MigrationError(t *testing.T) {
	app, _ := newTestApp(t, errors.New("boom"))

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations: boom")
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRun_RejectsNonPositiveCleanupInterval(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.config.CleanupInterval = 0

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "cleanup interval must be positive")
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestSweep_PurgesExpired(t *testing.T) {
	app, mock := newTestApp(t, nil)

	mock.ExpectExec(`^DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`^DELETE\s+FROM\s+verification_tokens\s+WHERE\s+expires_at`).WillReturnResult(sqlmock.NewResult(0, 1))

	app.sweep(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep_ErrorIsNotFatal(t *testing.T) {
	app, mock := newTestApp(t, nil)

	mock.ExpectExec(`^DELETE\s+FROM\s+sessions`).WillReturnError(errors.New("db down"))

	assert.NotPanics(t, func() { app.sweep(context.Background()) })
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadLogLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "loud"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestNewApp_Close(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	app, err := NewApp(cfg)
	require.NoError(t, err)
	assert.NoError(t, app.Close())
}
