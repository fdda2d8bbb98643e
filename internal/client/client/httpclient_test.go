package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	cookie string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, respBody string) (*HTTPClient, *recorded, *int32) {
	t.Helper()
	rec := &recorded{}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.cookie = r.Header.Get("Cookie")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL)
	require.NoError(t, err)
	return c, rec, &calls
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		_, err := NewHTTPClient(u)
		assert.Error(t, err, u)
	}
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewHTTPClient("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.baseURL)
}

func TestGetSession_SendsBearerAndDecodes(t *testing.T) {
	c, rec, _ := newTestServer(t, http.StatusOK, `{"user":{"id":"u1","email":"a@x.io"},"session":{"active":true,"expires_at":"2030-01-01T00:00:00"}}`)

	data, err := c.GetSession(context.Background(), "tok123")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/auth/session", rec.path)
	assert.Equal(t, "Bearer tok123", rec.auth)
	assert.Empty(t, rec.cookie)
	require.NotNil(t, data.User)
	assert.Equal(t, "u1", data.User.ID)
}

func TestGetSession_Unauthorized(t *testing.T) {
	c, _, _ := newTestServer(t, http.StatusUnauthorized, `{"detail":"Invalid token"}`)

	_, err := c.GetSession(context.Background(), "tok123")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid token", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestGetSession_ServerErrorIsRejected(t *testing.T) {
	c, _, _ := newTestServer(t, http.StatusInternalServerError, `oops`)

	_, err := c.GetSession(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "", ServerMessage(err))
}

func TestGetSession_Malformed(t *testing.T) {
	c, _, _ := newTestServer(t, http.StatusOK, `{"ok":true}`)

	_, err := c.GetSession(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url)
	require.NoError(t, err)

	_, err = c.GetSession(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCanceledContext_ReturnsContextError(t *testing.T) {
	c, _, _ := newTestServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetSession(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestTimeout_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.GetSession(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSignIn_PostsCredentials(t *testing.T) {
	c, rec, _ := newTestServer(t, http.StatusOK, `{"message":"ok","user":{"id":"u1"},"session":{"token":"tk"},"access_token":"tk"}`)

	p, err := c.SignIn(context.Background(), models.SignInInput{Email: "a@x.io", Password: "secret12"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/auth/sign-in", rec.path)
	assert.Empty(t, rec.auth)
	assert.Equal(t, "a@x.io", rec.body["email"])
	assert.Equal(t, "secret12", rec.body["password"])
	assert.Equal(t, "tk", p.Token)
}

func TestSignUp_PostsForm(t *testing.T) {
	c, rec, _ := newTestServer(t, http.StatusOK, `{"data":{"user":{"id":"u1"},"session":{"token":"newtok"}}}`)

	p, err := c.SignUp(context.Background(), models.SignUpInput{Email: "a@x.io", Password: "p", Name: "A", Username: "a"})
	require.NoError(t, err)

	assert.Equal(t, "/api/auth/sign-up", rec.path)
	assert.Equal(t, "A", rec.body["name"])
	assert.Equal(t, "a", rec.body["username"])
	assert.Equal(t, "newtok", p.Token)
}

func TestSignIn_ErrorCarriesDetail(t *testing.T) {
	c, _, _ := newTestServer(t, http.StatusUnauthorized, `{"detail":"invalid email or password"}`)

	_, err := c.SignIn(context.Background(), models.SignInInput{Email: "a@x.io", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", ServerMessage(err))
}

func TestSignOut_SendsBearer(t *testing.T) {
	c, rec, _ := newTestServer(t, http.StatusOK, `{"message":"signed out"}`)

	p, err := c.SignOut(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/sign-out", rec.path)
	assert.Equal(t, "Bearer tok", rec.auth)
	assert.Equal(t, "signed out", p.Message)
}

func TestEmailEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("send verification", func(t *testing.T) {
		c, rec, _ := newTestServer(t, http.StatusOK, `{}`)
		_, err := c.SendVerificationEmail(ctx, "a@x.io", "http://app/cb")
		require.NoError(t, err)
		assert.Equal(t, "/api/auth/send-verification-email", rec.path)
		assert.Equal(t, "a@x.io", rec.body["email"])
		assert.Equal(t, "http://app/cb", rec.body["callbackURL"])
	})

	t.Run("forget password", func(t *testing.T) {
		c, rec, _ := newTestServer(t, http.StatusOK, `{}`)
		_, err := c.ForgetPassword(ctx, "a@x.io", "")
		require.NoError(t, err)
		assert.Equal(t, "/api/auth/forget-password", rec.path)
		_, hasRedirect := rec.body["redirectTo"]
		assert.False(t, hasRedirect)
	})

	t.Run("reset password", func(t *testing.T) {
		c, rec, _ := newTestServer(t, http.StatusOK, `{}`)
		_, err := c.ResetPassword(ctx, "rt", "newsecret")
		require.NoError(t, err)
		assert.Equal(t, "/api/auth/reset-password", rec.path)
		assert.Equal(t, "rt", rec.body["token"])
		assert.Equal(t, "newsecret", rec.body["newPassword"])
	})

	t.Run("verify email", func(t *testing.T) {
		c, rec, _ := newTestServer(t, http.StatusOK, `{"message":"verified"}`)
		p, err := c.VerifyEmail(ctx, "a b")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, rec.method)
		assert.Equal(t, "/api/auth/verify-email", rec.path)
		assert.Equal(t, "token=a+b", rec.query)
		assert.Equal(t, "verified", p.Message)
	})

	t.Run("error message from error.message", func(t *testing.T) {
		c, _, _ := newTestServer(t, http.StatusBadRequest, `{"error":{"message":"token expired"}}`)
		_, err := c.ResetPassword(ctx, "rt", "x")
		assert.ErrorIs(t, err, ErrRejected)
		assert.Equal(t, "token expired", ServerMessage(err))
	})
}

func TestBaseURLPathPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"user":null}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL + "/backend/")
	require.NoError(t, err)
	_, err = c.GetSession(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "/backend/api/auth/session", gotPath)
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "server returned 409: exists", (&APIError{StatusCode: 409, Message: "exists"}).Error())
	assert.Equal(t, "server returned 502", (&APIError{StatusCode: 502}).Error())
	assert.ErrorIs(t, &APIError{StatusCode: http.StatusForbidden}, ErrUnauthorized)
}
