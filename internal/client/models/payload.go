package models

import (
	"encoding/json"
)

// AuthPayload is the normalized success body of a credential-mutating call.
// Token is empty when the response carried none.
type AuthPayload struct {
	Token   string
	User    *User
	Session *Session
	Message string
	Raw     json.RawMessage

	// UserDropped is set when the body named a user that could not be
	// decoded. Token and Message are still usable.
	UserDropped bool
}

// SignUpInput is the form submitted to /sign-up. Username defaults to the
// local part of Email when empty.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// SignInInput is the form submitted to /sign-in.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Failure is the error returned by client operations. Message is short and
// safe to show to a user; Err keeps the underlying cause for errors.Is.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}
