// Package authctx exposes one shared view of the signed-in user to the rest
// of the client.
//
// A single Provider is built at the composition root and attached to the
// root context with WithProvider. Commands retrieve it with FromContext or
// MustFromContext; the latter panics when no provider is in scope.
package authctx

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/client/services"
	"github.com/dmitrijs2005/admagic/internal/client/session"
)

// ErrNoProvider is returned by FromContext outside a provider scope.
var ErrNoProvider = errors.New("authctx: no auth provider in context")

// Tracker is the part of session.Tracker the provider depends on.
type Tracker interface {
	State() session.State
	Refetch(ctx context.Context) session.State
	Subscribe() (<-chan session.State, func())
}

// View is what consumers see. User is nil when nobody is signed in.
type View struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Err             error
}

// ViewOf derives a View from a tracker state.
func ViewOf(s session.State) View {
	v := View{IsLoading: s.IsPending, Err: s.Err}
	if s.Data != nil && s.Data.User != nil {
		v.User = s.Data.User
		v.IsAuthenticated = true
	}
	return v
}

type Provider struct {
	tracker Tracker
	auth    services.AuthService
}

func NewProvider(t Tracker, a services.AuthService) *Provider {
	return &Provider{tracker: t, auth: a}
}

// View returns the current view.
func (p *Provider) View() View {
	return ViewOf(p.tracker.State())
}

// Refetch revalidates the session and returns the settled view. All
// subscribers observe the change because they share the tracker.
func (p *Provider) Refetch(ctx context.Context) View {
	return ViewOf(p.tracker.Refetch(ctx))
}

// Subscribe streams views. Like the underlying tracker, intermediate values
// may be skipped by slow readers.
func (p *Provider) Subscribe(ctx context.Context) (<-chan View, func()) {
	states, stop := p.tracker.Subscribe()
	out := make(chan View, 1)
	go func() {
		defer close(out)
		for {
			select {
			case s, ok := <-states:
				if !ok {
					return
				}
				v := ViewOf(s)
				select {
				case <-out:
				default:
				}
				out <- v
			case <-ctx.Done():
				stop()
				return
			}
		}
	}()
	return out, stop
}

// SignUp registers and, on success, refetches so the view reflects the
// auto-login before SignUp returns.
func (p *Provider) SignUp(ctx context.Context, in models.SignUpInput, opts ...services.CallOption) (*models.AuthPayload, error) {
	payload, err := p.auth.SignUp(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	p.tracker.Refetch(ctx)
	return payload, nil
}

// SignIn stores the new credential and refetches on success.
func (p *Provider) SignIn(ctx context.Context, in models.SignInInput, opts ...services.CallOption) (*models.AuthPayload, error) {
	payload, err := p.auth.SignIn(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	p.tracker.Refetch(ctx)
	return payload, nil
}

// SignOut always refetches, since the local credential is cleared even
// when the call fails.
func (p *Provider) SignOut(ctx context.Context, opts ...services.CallOption) (*models.AuthPayload, error) {
	payload, err := p.auth.SignOut(ctx, opts...)
	p.tracker.Refetch(ctx)
	return payload, err
}

// Auth gives direct access to the operations that do not affect the
// session, such as password reset.
func (p *Provider) Auth() services.AuthService {
	return p.auth
}

type providerKey struct{}

// WithProvider returns a child context carrying p.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

func FromContext(ctx context.Context) (*Provider, error) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	if !ok || p == nil {
		return nil, ErrNoProvider
	}
	return p, nil
}

// MustFromContext is FromContext for code that cannot run without a
// provider. It panics with ErrNoProvider.
func MustFromContext(ctx context.Context) *Provider {
	p, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return p
}
