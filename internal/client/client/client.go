package client

import (
	"context"

	"github.com/dmitrijs2005/admagic/internal/client/models"
)

// Client is the transport contract of the auth API. Methods that act on the
// current session take the bearer token explicitly; implementations keep no
// credential of their own.
type Client interface {
	SignUp(ctx context.Context, in models.SignUpInput) (*models.AuthPayload, error)
	SignIn(ctx context.Context, in models.SignInInput) (*models.AuthPayload, error)
	SignOut(ctx context.Context, token string) (*models.AuthPayload, error)
	GetSession(ctx context.Context, token string) (models.SessionData, error)
	SendVerificationEmail(ctx context.Context, email, callbackURL string) (*models.AuthPayload, error)
	ForgetPassword(ctx context.Context, email, redirectTo string) (*models.AuthPayload, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.AuthPayload, error)
	VerifyEmail(ctx context.Context, token string) (*models.AuthPayload, error)
}
