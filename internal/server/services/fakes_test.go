package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/dbx"
	"github.com/dmitrijs2005/admagic/internal/logging"
	"github.com/dmitrijs2005/admagic/internal/server/config"
	"github.com/dmitrijs2005/admagic/internal/server/mailer"
	"github.com/dmitrijs2005/admagic/internal/server/models"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/users"
	"github.com/dmitrijs2005/admagic/internal/server/repositories/verifications"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID      map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, common.ErrUserExists
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, email string) error {
	for _, u := range f.byID {
		if u.Email == email {
			u.EmailVerified = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeSessions struct {
	byToken   map[string]*models.Session
	createErr error
}

func (f *fakeSessions) Create(_ context.Context, s *models.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	c := *s
	c.ID = uuid.NewString()
	f.byToken[c.Token] = &c
	return nil
}

func (f *fakeSessions) FindByToken(_ context.Context, token string) (*models.Session, error) {
	if s, ok := f.byToken[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) DeleteByToken(_ context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) error {
	for k, s := range f.byToken {
		if s.UserID == userID {
			delete(f.byToken, k)
		}
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, s := range f.byToken {
		if s.Expired(now) {
			delete(f.byToken, k)
			n++
		}
	}
	return n, nil
}

type fakeVerifications struct {
	byToken map[string]*models.VerificationToken
}

func (f *fakeVerifications) Create(_ context.Context, t *models.VerificationToken) error {
	c := *t
	c.ID = uuid.NewString()
	f.byToken[c.Token] = &c
	return nil
}

func (f *fakeVerifications) Find(_ context.Context, token string, kind models.TokenKind) (*models.VerificationToken, error) {
	if t, ok := f.byToken[token]; ok && t.Kind == kind {
		c := *t
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeVerifications) MarkUsed(_ context.Context, id string, at time.Time) error {
	for _, t := range f.byToken {
		if t.ID == id && t.UsedAt == nil {
			t.UsedAt = &at
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeVerifications) DeleteByEmail(_ context.Context, email string, kind models.TokenKind) error {
	for k, t := range f.byToken {
		if t.Email == email && t.Kind == kind {
			delete(f.byToken, k)
		}
	}
	return nil
}

func (f *fakeVerifications) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.byToken {
		if !t.Usable(now) {
			delete(f.byToken, k)
			n++
		}
	}
	return n, nil
}

// tokensOf returns the outstanding token strings of kind for email.
func (f *fakeVerifications) tokensOf(email string, kind models.TokenKind) []string {
	var out []string
	for k, t := range f.byToken {
		if t.Email == email && t.Kind == kind {
			out = append(out, k)
		}
	}
	return out
}

type fakeRepoManager struct {
	u *fakeUsers
	s *fakeSessions
	v *fakeVerifications
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsers{byID: map[string]*models.User{}},
		s: &fakeSessions{byToken: map[string]*models.Session{}},
		v: &fakeVerifications{byToken: map[string]*models.VerificationToken{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository           { return m.s }
func (m *fakeRepoManager) Verifications(dbx.DBTX) verifications.Repository { return m.v }

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

type harness struct {
	svc    *AuthService
	mock   sqlmock.Sqlmock
	repos  *fakeRepoManager
	mailer *fakeMailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	rm := newFakeRepoManager()
	ml := &fakeMailer{}
	return &harness{
		svc:    NewAuthService(db, rm, ml, logging.Nop(), cfg),
		mock:   mock,
		repos:  rm,
		mailer: ml,
	}
}

// expectTx queues n committed transactions.
func (h *harness) expectTx(n int) {
	for range n {
		h.mock.ExpectBegin()
		h.mock.ExpectCommit()
	}
}

var errDB = errors.New("db down")
