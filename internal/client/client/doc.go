// Package client talks to the admagic auth API.
//
// # Overview
//
// Client is the transport contract; HTTPClient implements it over JSON/HTTP
// with "Authorization: Bearer <token>" headers and no cookie jar. Bodies are
// normalized by the models package, which accepts both the enveloped
// {"data":{…}} and the flat response dialects.
//
// The package also bootstraps the CLI's local SQLite database
// (InitDatabase, RunMigrations).
//
// # Error Handling
//
// Failures are classified so callers can tell them apart with errors.Is:
//
//   - ErrUnavailable: no HTTP response at all (DNS, refused, timeout).
//   - *APIError: a non-2xx answer. It matches ErrUnauthorized for 401/403
//     and ErrRejected otherwise, and carries the server's message.
//   - ErrMalformedResponse: a 2xx answer that could not be decoded.
//
// Context cancellation is returned as the context's own error.
package client
