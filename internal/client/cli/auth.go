package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/admagic/internal/client/authctx"
	"github.com/dmitrijs2005/admagic/internal/client/client"
	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/client/services"
	"github.com/dmitrijs2005/admagic/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const msgCannotVerify = "Couldn't verify session, try again"

// report returns the callbacks every command uses: failures print the
// short message, successes print ok.
func report(ok string) []services.CallOption {
	return []services.CallOption{
		services.OnRequest(func() { printlnFn("...") }),
		services.OnSuccess(func(*models.AuthPayload) {
			if ok != "" {
				printlnFn(ok)
			}
		}),
		services.OnError(func(f *models.Failure) { printlnFn("Error:", f.Message) }),
	}
}

func (a *App) promptPassword() (string, error) {
	pw, err := getPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for email, name and password and creates the account.
// The server signs the new user in, so the view is refreshed on success.
func (a *App) Register(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	_, err = p.SignUp(ctx, models.SignUpInput{Email: email, Password: password, Name: name}, report("Account created")...)
	if err != nil {
		return err
	}
	a.printView(p.View())
	return nil
}

// Login prompts for credentials and signs in. A failed attempt leaves any
// existing credential in place.
func (a *App) Login(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}

	if _, err := p.SignIn(ctx, models.SignInInput{Email: email, Password: password}, report("")...); err != nil {
		return err
	}
	a.printView(p.View())
	return nil
}

// Logout signs out. The local credential is gone afterwards even when the
// server could not be reached.
func (a *App) Logout(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)
	_, err := p.SignOut(ctx, report("Signed out")...)
	return err
}

// WhoAmI prints the current view without contacting the server.
func (a *App) WhoAmI(ctx context.Context) error {
	a.printView(authctx.MustFromContext(ctx).View())
	return nil
}

// Refresh revalidates the session with the server and prints the result.
func (a *App) Refresh(ctx context.Context) error {
	v := authctx.MustFromContext(ctx).Refetch(ctx)
	a.applyView(v)
	a.printView(v)
	return v.Err
}

// ResendVerification sends a new verification email to the signed-in user.
func (a *App) ResendVerification(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)
	v := p.View()
	if v.User == nil {
		printlnFn("Not signed in")
		return nil
	}
	_, err := p.Auth().SendVerificationEmail(ctx, v.User.Email, "", report("Verification email sent to "+v.User.Email)...)
	return err
}

// VerifyEmail consumes a verification token and refreshes the view so the
// verified flag shows up.
func (a *App) VerifyEmail(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)

	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}
	if _, err := p.Auth().VerifyEmail(ctx, token, report("Email verified")...); err != nil {
		return err
	}
	p.Refetch(ctx)
	return nil
}

// ForgotPassword requests a reset email. The server answers the same way
// for unknown addresses.
func (a *App) ForgotPassword(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	_, err = p.Auth().ForgetPassword(ctx, email, "", report("If the account exists, a reset email is on its way")...)
	return err
}

// ResetPassword sets a new password using the token from the reset email.
func (a *App) ResetPassword(ctx context.Context) error {
	p := authctx.MustFromContext(ctx)

	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := a.promptPassword()
	if err != nil {
		return err
	}
	_, err = p.Auth().ResetPassword(ctx, token, password, report("Password updated, please log in")...)
	return err
}

func (a *App) printView(v authctx.View) {
	switch {
	case v.IsLoading:
		printlnFn("Checking session...")
	case errors.Is(v.Err, client.ErrUnavailable):
		printlnFn(msgCannotVerify)
	case v.User == nil:
		printlnFn("Not signed in")
	default:
		u := v.User
		line := fmt.Sprintf("Signed in as %s <%s>", displayName(u), u.Email)
		if !u.EmailVerified {
			line += " (email not verified)"
		}
		printlnFn(line)
	}
}

func displayName(u *models.User) string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return common.EmailLocalPart(u.Email)
	}
}
