package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/admagic/internal/client/models"
)

var (
	// ErrUnavailable means the request never produced an HTTP response.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches APIErrors with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected matches every other non-2xx APIError.
	ErrRejected = errors.New("request rejected")
	// ErrMalformedResponse is returned for 2xx bodies that cannot be decoded.
	ErrMalformedResponse = models.ErrMalformedResponse
)

// APIError is a non-2xx answer from the server. Message holds the server's
// own error text when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return ErrRejected
}

// ServerMessage returns the server-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
