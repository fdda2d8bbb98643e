package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/admagic/internal/client/client"
	"github.com/dmitrijs2005/admagic/internal/client/models"
)

var errNetwork = errors.New("dial tcp: connection refused")

func unavailable() error {
	return errors.Join(client.ErrUnavailable, errNetwork)
}

// fakeClient implements client.Client with preset results and captured inputs.
type fakeClient struct {
	SignUpRet *models.AuthPayload
	SignUpErr error
	SignInRet *models.AuthPayload
	SignInErr error
	SignOutRet *models.AuthPayload
	SignOutErr error
	SessionRet models.SessionData
	SessionErr error
	EmailRet   *models.AuthPayload
	EmailErr   error

	LastSignUp       models.SignUpInput
	LastSignIn       models.SignInInput
	LastSignOutToken string
	LastSessionToken string
	LastEmail        string
	LastToken        string
	LastPassword     string
	LastRedirect     string

	Calls []string
}

func (f *fakeClient) SignUp(_ context.Context, in models.SignUpInput) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "sign-up")
	f.LastSignUp = in
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeClient) SignIn(_ context.Context, in models.SignInInput) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "sign-in")
	f.LastSignIn = in
	return f.SignInRet, f.SignInErr
}

func (f *fakeClient) SignOut(_ context.Context, token string) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "sign-out")
	f.LastSignOutToken = token
	return f.SignOutRet, f.SignOutErr
}

func (f *fakeClient) GetSession(_ context.Context, token string) (models.SessionData, error) {
	f.Calls = append(f.Calls, "session")
	f.LastSessionToken = token
	return f.SessionRet, f.SessionErr
}

func (f *fakeClient) SendVerificationEmail(_ context.Context, email, callbackURL string) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "send-verification-email")
	f.LastEmail, f.LastRedirect = email, callbackURL
	return f.EmailRet, f.EmailErr
}

func (f *fakeClient) ForgetPassword(_ context.Context, email, redirectTo string) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "forget-password")
	f.LastEmail, f.LastRedirect = email, redirectTo
	return f.EmailRet, f.EmailErr
}

func (f *fakeClient) ResetPassword(_ context.Context, token, newPassword string) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "reset-password")
	f.LastToken, f.LastPassword = token, newPassword
	return f.EmailRet, f.EmailErr
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) (*models.AuthPayload, error) {
	f.Calls = append(f.Calls, "verify-email")
	f.LastToken = token
	return f.EmailRet, f.EmailErr
}

// failingStore returns preset errors from every method.
type failingStore struct {
	getErr, setErr, clearErr error
	cleared                  bool
}

func (s *failingStore) Set(context.Context, string) error { return s.setErr }
func (s *failingStore) Get(context.Context) (string, bool, error) {
	return "tok", s.getErr == nil, s.getErr
}
func (s *failingStore) Clear(context.Context) error {
	s.cleared = true
	return s.clearErr
}
