package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(ctx context.Context) error         { return f.record("whoami") }
func (f *fakeExec) Profile(ctx context.Context) error        { return f.record("profile") }
func (f *fakeExec) ForgotPassword(ctx context.Context) error { return f.record("forgot") }
func (f *fakeExec) ResetPassword(ctx context.Context) error  { return f.record("reset") }
func (f *fakeExec) OAuth(ctx context.Context, provider string) error {
	f.arg = provider
	return f.record("oauth")
}
func (f *fakeExec) DashboardLogin(ctx context.Context) error  { return f.record("dashboard-login") }
func (f *fakeExec) DashboardLogout(ctx context.Context) error { return f.record("dashboard-logout") }
func (f *fakeExec) DashboardStatus(ctx context.Context) error { return f.record("dashboard-status") }
func (f *fakeExec) AdminRegister(ctx context.Context) error   { return f.record("admin-register") }
func (f *fakeExec) TwoFactorEnable(ctx context.Context) error { return f.record("2fa-enable") }
func (f *fakeExec) TwoFactorVerify(ctx context.Context) error { return f.record("2fa-verify") }
func (f *fakeExec) TwoFactorAck(ctx context.Context) error    { return f.record("2fa-ack") }
func (f *fakeExec) TwoFactorDisable(ctx context.Context) error {
	return f.record("2fa-disable")
}
func (f *fakeExec) TwoFactorStatus(ctx context.Context) error { return f.record("2fa-status") }
func (f *fakeExec) Passwd(ctx context.Context) error          { return f.record("passwd") }
func (f *fakeExec) History(ctx context.Context) error         { return f.record("history") }
func (f *fakeExec) Sessions(ctx context.Context) error        { return f.record("sessions") }
func (f *fakeExec) Revoke(ctx context.Context, id string) error {
	f.arg = id
	return f.record("revoke")
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_DispatchesCommandsInOrder(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"whoami",
		"profile",
		"2fa-enable",
		"2fa-verify",
		"2fa-ack",
		"history",
		"sessions",
		"revoke sess-9",
		"logout",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	want := []string{
		"login", "whoami", "profile", "2fa-enable", "2fa-verify", "2fa-ack",
		"history", "sessions", "revoke", "logout",
	}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("calls mismatch at %d: got %v, want %v", i, exec.calls, want)
		}
	}
	if exec.arg != "sess-9" {
		t.Fatalf("revoke arg: got %q", exec.arg)
	}
}

func TestRunREPL_RevokeWithoutIDIsUsageError(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("revoke\noauth\nexit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 0 {
		t.Fatalf("expected no dispatches, got %v", exec.calls)
	}
}

func TestRunREPL_OAuthPassesProvider(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader("oauth github\nexit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if exec.arg != "github" {
		t.Fatalf("provider: got %q", exec.arg)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))

	if len(exec.calls) != 0 {
		t.Fatalf("expected no dispatches, got %v", exec.calls)
	}
}
