package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// NewHTTPClient returns a client rooted at baseURL (scheme and host, with an
// optional path prefix).
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: need http(s)://host", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, in models.SignUpInput) (*models.AuthPayload, error) {
	return c.postPayload(ctx, "/sign-up", "", in)
}

func (c *HTTPClient) SignIn(ctx context.Context, in models.SignInInput) (*models.AuthPayload, error) {
	return c.postPayload(ctx, "/sign-in", "", in)
}

func (c *HTTPClient) SignOut(ctx context.Context, token string) (*models.AuthPayload, error) {
	return c.postPayload(ctx, "/sign-out", token, nil)
}

// GetSession resolves token to the server's view of the session.
func (c *HTTPClient) GetSession(ctx context.Context, token string) (models.SessionData, error) {
	body, err := c.do(ctx, http.MethodGet, "/session", token, nil)
	if err != nil {
		return models.SessionData{}, err
	}
	return models.DecodeSessionData(body)
}

func (c *HTTPClient) SendVerificationEmail(ctx context.Context, email, callbackURL string) (*models.AuthPayload, error) {
	req := struct {
		Email       string `json:"email"`
		CallbackURL string `json:"callbackURL,omitempty"`
	}{email, callbackURL}
	return c.postPayload(ctx, "/send-verification-email", "", req)
}

func (c *HTTPClient) ForgetPassword(ctx context.Context, email, redirectTo string) (*models.AuthPayload, error) {
	req := struct {
		Email      string `json:"email"`
		RedirectTo string `json:"redirectTo,omitempty"`
	}{email, redirectTo}
	return c.postPayload(ctx, "/forget-password", "", req)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) (*models.AuthPayload, error) {
	req := struct {
		NewPassword string `json:"newPassword"`
		Token       string `json:"token"`
	}{newPassword, token}
	return c.postPayload(ctx, "/reset-password", "", req)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (*models.AuthPayload, error) {
	body, err := c.do(ctx, http.MethodGet, "/verify-email?token="+url.QueryEscape(token), "", nil)
	if err != nil {
		return nil, err
	}
	return models.DecodeAuthPayload(body)
}

func (c *HTTPClient) postPayload(ctx context.Context, path, token string, in any) (*models.AuthPayload, error) {
	body, err := c.do(ctx, http.MethodPost, path, token, in)
	if err != nil {
		return nil, err
	}
	return models.DecodeAuthPayload(body)
}

// do sends one request and returns the body of a 2xx answer. Non-2xx
// answers become *APIError; transport failures wrap ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+common.APIPrefix+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.mapError(ctx, err)
	}

	c.logger.Debug(ctx, "auth api call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: models.ErrorMessage(body)}
	}
	return body, nil
}

func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
