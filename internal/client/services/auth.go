// Package services contains the client's application services: resolving
// the stored credential into a session, and the operations that create,
// replace or drop that credential.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/admagic/internal/client/client"
	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/client/store"
	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

// Fallback messages shown when the server gives none.
const (
	MsgSignUpFailed       = "sign-up failed"
	MsgSignInFailed       = "sign-in failed"
	MsgSignOutFailed      = "sign-out failed"
	MsgSendVerifyFailed   = "failed to send verification email"
	MsgSendResetFailed    = "failed to send reset email"
	MsgResetFailed        = "failed to reset password"
	MsgVerifyEmailFailed  = "failed to verify email"
	msgSaveCredentialFail = "could not save session locally"
)

// AuthService runs the credential-mutating operations. Each call invokes
// OnRequest first, then exactly one of OnSuccess or OnError. Errors are
// always *models.Failure.
type AuthService interface {
	SignUp(ctx context.Context, in models.SignUpInput, opts ...CallOption) (*models.AuthPayload, error)
	SignIn(ctx context.Context, in models.SignInInput, opts ...CallOption) (*models.AuthPayload, error)
	SignOut(ctx context.Context, opts ...CallOption) (*models.AuthPayload, error)
	SendVerificationEmail(ctx context.Context, email, callbackURL string, opts ...CallOption) (*models.AuthPayload, error)
	ForgetPassword(ctx context.Context, email, redirectTo string, opts ...CallOption) (*models.AuthPayload, error)
	ResetPassword(ctx context.Context, token, newPassword string, opts ...CallOption) (*models.AuthPayload, error)
	VerifyEmail(ctx context.Context, token string, opts ...CallOption) (*models.AuthPayload, error)
}

type callbacks struct {
	onRequest func()
	onSuccess func(*models.AuthPayload)
	onError   func(*models.Failure)
}

// CallOption attaches a lifecycle callback to one operation.
type CallOption func(*callbacks)

func OnRequest(fn func()) CallOption {
	return func(c *callbacks) { c.onRequest = fn }
}

func OnSuccess(fn func(*models.AuthPayload)) CallOption {
	return func(c *callbacks) { c.onSuccess = fn }
}

func OnError(fn func(*models.Failure)) CallOption {
	return func(c *callbacks) { c.onError = fn }
}

type authService struct {
	client client.Client
	store  store.Store
	logger logging.Logger
}

// NewAuthService constructs an AuthService over the API client and the
// credential store.
func NewAuthService(c client.Client, s store.Store, l logging.Logger) AuthService {
	return &authService{client: c, store: s, logger: l}
}

// SignUp registers the account. A token in the response signs the user in
// immediately; without one the store is left as it was.
func (a *authService) SignUp(ctx context.Context, in models.SignUpInput, opts ...CallOption) (*models.AuthPayload, error) {
	if in.Username == "" {
		in.Username = common.EmailLocalPart(in.Email)
	}
	return a.run(ctx, MsgSignUpFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) { return a.client.SignUp(ctx, in) },
		func(ctx context.Context, p *models.AuthPayload) *models.Failure {
			if p.Token == "" {
				return nil
			}
			return a.saveToken(ctx, p.Token)
		})
}

// SignIn exchanges credentials for a token. On failure any previously
// stored credential stays in place.
func (a *authService) SignIn(ctx context.Context, in models.SignInInput, opts ...CallOption) (*models.AuthPayload, error) {
	return a.run(ctx, MsgSignInFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) { return a.client.SignIn(ctx, in) },
		func(ctx context.Context, p *models.AuthPayload) *models.Failure {
			if p.Token == "" {
				return &models.Failure{Message: MsgSignInFailed, Err: client.ErrMalformedResponse}
			}
			return a.saveToken(ctx, p.Token)
		})
}

// SignOut tells the server to drop the session and clears the local
// credential whatever the outcome. Only a transport failure is reported;
// a server refusal still counts as signed out.
func (a *authService) SignOut(ctx context.Context, opts ...CallOption) (*models.AuthPayload, error) {
	cb := collect(opts)
	if cb.onRequest != nil {
		cb.onRequest()
	}

	token, _, err := a.store.Get(ctx)
	if err != nil {
		a.logger.Warn(ctx, "read credential before sign-out", "error", err)
	}

	p, callErr := a.client.SignOut(ctx, token)
	clearErr := a.store.Clear(ctx)

	var apiErr *client.APIError
	if errors.As(callErr, &apiErr) {
		a.logger.Info(ctx, "server refused sign-out", "status", apiErr.StatusCode)
		p, callErr = &models.AuthPayload{}, nil
	}

	var f *models.Failure
	switch {
	case callErr != nil:
		f = &models.Failure{Message: MsgSignOutFailed, Err: callErr}
	case clearErr != nil:
		f = &models.Failure{Message: MsgSignOutFailed, Err: clearErr}
	}
	if f != nil {
		if cb.onError != nil {
			cb.onError(f)
		}
		return nil, f
	}

	if cb.onSuccess != nil {
		cb.onSuccess(p)
	}
	return p, nil
}

func (a *authService) SendVerificationEmail(ctx context.Context, email, callbackURL string, opts ...CallOption) (*models.AuthPayload, error) {
	return a.run(ctx, MsgSendVerifyFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) {
			return a.client.SendVerificationEmail(ctx, email, callbackURL)
		}, nil)
}

func (a *authService) ForgetPassword(ctx context.Context, email, redirectTo string, opts ...CallOption) (*models.AuthPayload, error) {
	return a.run(ctx, MsgSendResetFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) {
			return a.client.ForgetPassword(ctx, email, redirectTo)
		}, nil)
}

func (a *authService) ResetPassword(ctx context.Context, token, newPassword string, opts ...CallOption) (*models.AuthPayload, error) {
	return a.run(ctx, MsgResetFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) {
			return a.client.ResetPassword(ctx, token, newPassword)
		}, nil)
}

func (a *authService) VerifyEmail(ctx context.Context, token string, opts ...CallOption) (*models.AuthPayload, error) {
	return a.run(ctx, MsgVerifyEmailFailed, opts,
		func(ctx context.Context) (*models.AuthPayload, error) {
			return a.client.VerifyEmail(ctx, token)
		}, nil)
}

// run wraps one network call with the callback protocol. after, when set,
// performs the store mutation that follows a successful call.
func (a *authService) run(
	ctx context.Context,
	fallback string,
	opts []CallOption,
	call func(context.Context) (*models.AuthPayload, error),
	after func(context.Context, *models.AuthPayload) *models.Failure,
) (*models.AuthPayload, error) {
	cb := collect(opts)
	if cb.onRequest != nil {
		cb.onRequest()
	}

	p, err := call(ctx)
	var f *models.Failure
	if err != nil {
		f = failure(err, fallback)
	} else {
		if p.UserDropped {
			a.logger.Warn(ctx, "auth response user could not be decoded", "has_token", p.Token != "")
		}
		if after != nil {
			f = after(ctx, p)
		}
	}

	if f != nil {
		a.logger.Debug(ctx, "auth operation failed", "message", f.Message, "error", f.Err)
		if cb.onError != nil {
			cb.onError(f)
		}
		return nil, f
	}

	if cb.onSuccess != nil {
		cb.onSuccess(p)
	}
	return p, nil
}

func (a *authService) saveToken(ctx context.Context, token string) *models.Failure {
	if err := a.store.Set(ctx, token); err != nil {
		return &models.Failure{Message: msgSaveCredentialFail, Err: err}
	}
	return nil
}

func collect(opts []CallOption) callbacks {
	var cb callbacks
	for _, opt := range opts {
		opt(&cb)
	}
	return cb
}

// failure keeps the server's own message when there is one.
func failure(err error, fallback string) *models.Failure {
	msg := client.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}
	return &models.Failure{Message: msg, Err: err}
}
