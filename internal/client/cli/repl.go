package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	ResendVerification(ctx context.Context) error
	VerifyEmail(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
}

// runREPL reads commands from in and dispatches them to a until EOF or
// "exit"/"quit". Handlers prompt on the same reader, so commands and their
// answers may arrive on one piped stream.
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account (signs in on success)
//	  - login          sign in
//	  - forgot         request a password reset email
//	  - reset          set a new password with a reset token
//	  - verify         confirm an email address with a token
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - help, whoami, refresh, resend, verify, logout, exit | quit
//
// Errors returned by handlers are ignored here; handlers report their own
// failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("admagic%s> ", prefixed(statusFn())))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, resend, verify, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, reset, verify, exit")
			}

		case "register", "signup":
			_ = a.Register(ctx)

		case "login", "signin":
			_ = a.Login(ctx)

		case "logout", "signout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "resend":
			_ = a.ResendVerification(ctx)

		case "verify":
			_ = a.VerifyEmail(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func prefixed(status string) string {
	if status == "" {
		return ""
	}
	return " " + status
}
