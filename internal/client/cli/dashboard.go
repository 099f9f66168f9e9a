package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/velora-digital/siteauth/internal/common"
)

// DashboardLogin authenticates for the admin dashboard. The username may be
// remembered across runs for form pre-fill.
func (a *App) DashboardLogin(ctx context.Context) error {
	remembered, err := a.dashboard.RememberedUsername(ctx)
	if err != nil {
		return err
	}

	prompt := "Enter admin username"
	if remembered != "" {
		prompt = fmt.Sprintf("Enter admin username [%s]", remembered)
	}
	username, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return err
	}
	if username == "" {
		username = remembered
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	answer, err := getSimpleText(a.reader, "Remember username? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	remember := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")

	rec, err := a.dashboard.Login(ctx, username, string(password), remember)
	if err != nil {
		printlnFn("Dashboard login failed:", err)
		return err
	}

	printlnFn(fmt.Sprintf("Dashboard unlocked for %s (%s)", rec.User.Username, rec.User.Role))
	return nil
}

func (a *App) DashboardLogout(ctx context.Context) error {
	if err := a.dashboard.Logout(ctx); err != nil {
		printlnFn("Dashboard logout failed:", err)
		return err
	}
	printlnFn("Dashboard locked.")
	return nil
}

func (a *App) DashboardStatus(ctx context.Context) error {
	ok, err := a.dashboard.IsAuthenticated(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if !ok {
		printlnFn("Dashboard: locked")
		return nil
	}

	rec, err := a.store.DashboardSession(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Dashboard: unlocked as %s since %s",
		rec.User.Username, rec.LoginTime.Format("2006-01-02 15:04:05")))
	return nil
}

// AdminRegister creates a dashboard account. It never establishes a session.
func (a *App) AdminRegister(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	msg, err := a.dashboard.RegisterAdmin(ctx, name, username, email, string(password), string(confirmation))
	if err != nil {
		printlnFn("Admin registration failed:", err)
		return err
	}
	printlnFn(msg)
	return nil
}
