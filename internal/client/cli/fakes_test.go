package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/admagic/internal/client/authctx"
	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/client/services"
	"github.com/dmitrijs2005/admagic/internal/client/session"
	"github.com/dmitrijs2005/admagic/internal/client/store"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

// fakeClient implements client.Client. Goroutine-safe because the session
// watcher calls it concurrently with the test.
type fakeClient struct {
	mu sync.Mutex

	SignUpRet  *models.AuthPayload
	SignUpErr  error
	SignInRet  *models.AuthPayload
	SignInErr  error
	SignOutErr error
	SessionRet models.SessionData
	SessionErr error
	OpErr      error

	LastSignUp   models.SignUpInput
	LastSignIn   models.SignInInput
	LastEmail    string
	LastToken    string
	LastPassword string

	calls map[string]int
}

func (f *fakeClient) set(fn func(*fakeClient)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeClient) hit(name string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) SignUp(_ context.Context, in models.SignUpInput) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("sign-up")
	f.LastSignUp = in
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeClient) SignIn(_ context.Context, in models.SignInInput) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("sign-in")
	f.LastSignIn = in
	return f.SignInRet, f.SignInErr
}

func (f *fakeClient) SignOut(context.Context, string) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("sign-out")
	return &models.AuthPayload{}, f.SignOutErr
}

func (f *fakeClient) GetSession(context.Context, string) (models.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("session")
	return f.SessionRet, f.SessionErr
}

func (f *fakeClient) SendVerificationEmail(_ context.Context, email, _ string) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("send-verification-email")
	f.LastEmail = email
	return &models.AuthPayload{}, f.OpErr
}

func (f *fakeClient) ForgetPassword(_ context.Context, email, _ string) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("forget-password")
	f.LastEmail = email
	return &models.AuthPayload{}, f.OpErr
}

func (f *fakeClient) ResetPassword(_ context.Context, token, newPassword string) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("reset-password")
	f.LastToken, f.LastPassword = token, newPassword
	return &models.AuthPayload{}, f.OpErr
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) (*models.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hit("verify-email")
	f.LastToken = token
	return &models.AuthPayload{}, f.OpErr
}

// newTestApp builds an App over fc and an in-memory store. The returned
// context carries the provider.
func newTestApp(t *testing.T, fc *fakeClient) (*App, context.Context, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	tracker := session.NewTracker(services.NewSessionFetcher(fc, st, logging.Nop()), logging.Nop())
	t.Cleanup(tracker.Close)

	app := &App{
		provider: authctx.NewProvider(tracker, services.NewAuthService(fc, st, logging.Nop())),
		tracker:  tracker,
		logger:   logging.Nop(),
		out:      io.Discard,
	}
	return app, authctx.WithProvider(context.Background(), app.provider), st
}

// stubInputs answers prompts from texts in order and returns password for
// every password prompt.
func stubInputs(t *testing.T, password string, texts ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
