// Package models holds the server's persisted records.
package models

import "time"

type User struct {
	ID            string
	Email         string
	Name          string
	Username      string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
