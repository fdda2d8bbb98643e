// Package cli provides the interactive admagic command-line client.
//
// It wires configuration, the local credential store, the auth API client,
// the session tracker and the auth provider, then runs a REPL. A background
// watcher revalidates the session periodically and switches the prompt
// between online and offline mode.
//
// Key features:
//   - Register / Login / Logout
//   - whoami and refresh for the current session
//   - Email verification and password reset
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
