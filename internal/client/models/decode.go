package models

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// ErrMalformedResponse is returned when a 2xx body is not JSON or lacks the
// fields a shape requires.
var ErrMalformedResponse = errors.New("malformed response")

// Numeric expiries below this are Unix seconds, above it milliseconds.
const epochMillisThreshold = 1e11

// DecodeSessionData normalizes a /session body. Two dialects are accepted:
// the envelope {"data":{"user":…,"session":…}} and the flat
// {"user":…,"session":…}. The envelope wins when both are present.
//
// A null user decodes to empty data. A user without a session object yields
// an active Session with no expiry; the credential itself is not echoed.
func DecodeSessionData(body []byte) (SessionData, error) {
	if !gjson.ValidBytes(body) {
		return SessionData{}, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)

	scope := root
	if d := root.Get("data"); d.IsObject() && d.Get("user").Exists() {
		scope = d
	}

	u := scope.Get("user")
	switch {
	case !u.Exists():
		return SessionData{}, ErrMalformedResponse
	case u.Type == gjson.Null:
		return SessionData{}, nil
	case !u.IsObject():
		return SessionData{}, ErrMalformedResponse
	}

	user, err := decodeUser(u)
	if err != nil {
		return SessionData{}, err
	}

	sess := &Session{Active: true}
	if s := scope.Get("session"); s.IsObject() {
		sess = decodeSession(s)
	}

	return SessionData{User: user, Session: sess}, nil
}

// DecodeAuthPayload normalizes a sign-up/sign-in/sign-out or email endpoint
// body. User and Session are filled only when the body names a user that
// decodes; an unusable user object leaves them nil and sets UserDropped
// without failing the payload.
func DecodeAuthPayload(body []byte) (*AuthPayload, error) {
	if len(body) == 0 {
		return &AuthPayload{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}

	p := &AuthPayload{
		Token:   ExtractToken(body),
		Message: gjson.GetBytes(body, "message").String(),
		Raw:     append([]byte(nil), body...),
	}

	if gjson.GetBytes(body, "data.user").IsObject() || gjson.GetBytes(body, "user").IsObject() {
		data, err := DecodeSessionData(body)
		if err != nil {
			p.UserDropped = true
			return p, nil
		}
		p.User = data.User
		p.Session = data.Session
		if p.Session != nil && p.Session.Token == "" {
			p.Session.Token = p.Token
		}
	}
	return p, nil
}

// ExtractToken returns the bearer token carried by an auth response, looking
// at data.session.token, then session.token, then access_token.
func ExtractToken(body []byte) string {
	for _, path := range []string{"data.session.token", "session.token", "access_token"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// ErrorMessage returns the human-readable message of an error body, or ""
// when none is present. It understands {"error":{"message"}}, a string
// {"detail"}, validation lists {"detail":[{"msg"}]}, and {"message"}.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.message", "detail", "detail.0.msg", "message"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func decodeUser(u gjson.Result) (*User, error) {
	id := u.Get("id")
	if !id.Exists() || id.Type == gjson.Null || id.String() == "" {
		return nil, ErrMalformedResponse
	}

	user := &User{
		ID:            id.String(),
		Email:         u.Get("email").String(),
		Name:          u.Get("name").String(),
		Username:      u.Get("username").String(),
		EmailVerified: firstOf(u, "emailVerified", "email_verified").Bool(),
		Image:         u.Get("image").String(),
		CreatedAt:     parseTime(firstOf(u, "createdAt", "created_at")),
	}
	if c := u.Get("credits"); c.Type == gjson.Number {
		v := c.Int()
		user.Credits = &v
	}
	if p := firstOf(u, "isPremium", "is_premium"); p.IsBool() {
		v := p.Bool()
		user.IsPremium = &v
	}
	return user, nil
}

func decodeSession(s gjson.Result) *Session {
	sess := &Session{
		Token:     s.Get("token").String(),
		ExpiresAt: parseTime(firstOf(s, "expiresAt", "expires_at")),
		Active:    true,
	}
	if a := s.Get("active"); a.IsBool() {
		sess.Active = a.Bool()
	}
	return sess
}

func firstOf(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func parseTime(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		n := v.Int()
		if float64(n) >= epochMillisThreshold {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	case gjson.String:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v.Str); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
