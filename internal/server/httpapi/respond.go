package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/admagic/internal/common"
	"github.com/dmitrijs2005/admagic/internal/server/models"
)

const maxBodyBytes = 1 << 20

type userJSON struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Username:      u.Username,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.UTC(),
	}
}

type sessionJSON struct {
	Token     string    `json:"token,omitempty"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// authResponse is returned by sign-up and sign-in. The token is carried both
// in session.token and access_token so either client dialect finds it.
type authResponse struct {
	Message     string      `json:"message"`
	User        userJSON    `json:"user"`
	Session     sessionJSON `json:"session"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
}

type sessionResponse struct {
	User    userJSON    `json:"user"`
	Session sessionJSON `json:"session"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detailResponse{Detail: msg})
}

// decodeBody reads a JSON object into v. Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}

// writeError maps a service error to a status and a short message. Anything
// not recognised is logged and reported as a 500 without details.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeDetail(w, http.StatusUnprocessableEntity, validationMessage(err))
	case errors.Is(err, common.ErrUserExists):
		writeDetail(w, http.StatusConflict, common.ErrUserExists.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrTokenExpired):
		writeDetail(w, http.StatusBadRequest, "token expired")
	case errors.Is(err, common.ErrInvalidToken):
		writeDetail(w, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, msg)
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return "invalid request body"
	}
	return msg
}
