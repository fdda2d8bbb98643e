// Package common contains shared constants and sentinel errors used across
// admagic components.
package common

// AuthTokenKey is the key under which the client persists the bearer
// credential in its local store.
const AuthTokenKey = "auth_token"

// AuthorizationHeader carries the bearer credential on outbound requests.
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// APIPrefix is the path prefix of every auth endpoint.
const APIPrefix = "/api/auth"
