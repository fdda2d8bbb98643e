// Package store holds the bearer credential between requests and process
// runs. It is the only place the token lives on the client.
package store

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/admagic/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/admagic/internal/common"
)

// Store keeps at most one credential. Set overwrites without validation;
// Clear is idempotent. Writers are not coordinated: the last write wins.
type Store interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (token string, ok bool, err error)
	Clear(ctx context.Context) error
}

// SQLiteStore persists the credential in the local metadata table under
// common.AuthTokenKey.
type SQLiteStore struct {
	repo metadata.Repository
}

func NewSQLiteStore(repo metadata.Repository) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.AuthTokenKey, token)
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	return s.repo.Get(ctx, common.AuthTokenKey)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.AuthTokenKey)
}

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = token, true
	return nil
}

func (m *MemoryStore) Get(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.set, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}
