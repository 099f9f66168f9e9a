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
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	OAuth(ctx context.Context, provider string) error
	DashboardLogin(ctx context.Context) error
	DashboardLogout(ctx context.Context) error
	DashboardStatus(ctx context.Context) error
	AdminRegister(ctx context.Context) error
	TwoFactorEnable(ctx context.Context) error
	TwoFactorVerify(ctx context.Context) error
	TwoFactorAck(ctx context.Context) error
	TwoFactorDisable(ctx context.Context) error
	TwoFactorStatus(ctx context.Context) error
	Passwd(ctx context.Context) error
	History(ctx context.Context) error
	Sessions(ctx context.Context) error
	Revoke(ctx context.Context, id string) error
}

const (
	helpLoggedOut = "Available commands: register, login, oauth <provider>, forgot, reset, dashboard-login, dashboard-status, admin-register, help, exit"
	helpLoggedIn  = "Available commands: whoami, profile, logout, 2fa-enable, 2fa-verify, 2fa-ack, 2fa-disable, 2fa-status, passwd, history, sessions, revoke <id>, dashboard-login, dashboard-logout, dashboard-status, help, exit"
)

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print their
// own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("site%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "oauth":
			if len(args) == 0 {
				printlnFn("Usage: oauth <provider>")
				continue
			}
			_ = a.OAuth(ctx, args[0])

		case "dashboard-login":
			_ = a.DashboardLogin(ctx)

		case "dashboard-logout":
			_ = a.DashboardLogout(ctx)

		case "dashboard-status":
			_ = a.DashboardStatus(ctx)

		case "admin-register":
			_ = a.AdminRegister(ctx)

		case "2fa-enable":
			_ = a.TwoFactorEnable(ctx)

		case "2fa-verify":
			_ = a.TwoFactorVerify(ctx)

		case "2fa-ack":
			_ = a.TwoFactorAck(ctx)

		case "2fa-disable":
			_ = a.TwoFactorDisable(ctx)

		case "2fa-status":
			_ = a.TwoFactorStatus(ctx)

		case "passwd":
			_ = a.Passwd(ctx)

		case "history":
			_ = a.History(ctx)

		case "sessions":
			_ = a.Sessions(ctx)

		case "revoke":
			if len(args) == 0 {
				printlnFn("Usage: revoke <id>")
				continue
			}
			_ = a.Revoke(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
