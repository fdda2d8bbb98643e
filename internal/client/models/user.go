// Package models defines the client-side view of users and sessions, and
// decodes the auth API's response bodies into it.
package models

import "time"

// User is the server's description of the signed-in account. It is replaced
// wholesale on every session fetch and never assembled locally.
type User struct {
	ID            string
	Email         string
	Name          string
	Username      string
	EmailVerified bool
	Image         string
	Credits       *int64
	IsPremium     *bool
	CreatedAt     time.Time
}

// Session describes the server-accepted credential. ExpiresAt is zero when
// the server did not report an expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Active    bool
}

// SessionData is the result of resolving the stored credential. Both fields
// are nil when nobody is signed in.
type SessionData struct {
	User    *User
	Session *Session
}

// SignedIn reports whether the data carries a user.
func (d SessionData) SignedIn() bool {
	return d.User != nil
}
