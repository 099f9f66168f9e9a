package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/velora-digital/siteauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates an account. A
// successful registration logs the user in immediately.
func (a *App) Register(ctx context.Context) error {
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

	user, err := a.auth.Register(ctx, name, username, email, string(password), string(confirmation))
	if err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	a.userName = user.Email
	a.twoFactor.Bootstrap(user.TwoFactorEnabled)
	printlnFn("Welcome,", user.Name)
	return nil
}

// Login prompts for credentials and authenticates. The identifier can be an
// email address or a username.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, identifier, string(password))
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	a.userName = user.Email
	a.twoFactor.Bootstrap(user.TwoFactorEnabled)
	printlnFn("Logged in as", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	a.userName = ""
	a.twoFactor.Bootstrap(false)
	printlnFn("Logged out.")
	return nil
}

// Whoami shows the locally persisted identity without a network round trip.
func (a *App) Whoami(ctx context.Context) error {
	rec, err := a.store.Session(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	if rec == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> (mode: %s)", rec.User.Name, rec.User.Email, rec.Mode))
	return nil
}

// Profile syncs the profile from the backend and prints it.
func (a *App) Profile(ctx context.Context) error {
	profile, err := a.auth.SyncProfile(ctx)
	if err != nil {
		printlnFn("Profile sync failed:", err)
		return err
	}

	if profile.Bio != "" {
		printlnFn("Bio:      ", profile.Bio)
	}
	if profile.Location != "" {
		printlnFn("Location: ", profile.Location)
	}
	if profile.JobTitle != "" {
		printlnFn("Job title:", profile.JobTitle)
	}
	for network, handle := range profile.Socials {
		printlnFn(fmt.Sprintf("%s: %s", network, handle))
	}
	printlnFn("Two-factor enabled:", profile.TwoFactorEnabled)
	return nil
}

// ForgotPassword requests a reset email. Stateless; no session side effects.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.auth.ForgotPassword(ctx, email)
	if err != nil {
		printlnFn("Request failed:", err)
		return err
	}
	printlnFn(msg)
	return nil
}

// ResetPassword completes a reset with the emailed token. A successful reset
// does not log the user in.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	msg, err := a.auth.ResetPassword(ctx, token, email, string(password), string(confirmation))
	if err != nil {
		printlnFn("Reset failed:", err)
		return err
	}
	printlnFn(msg)
	printlnFn("You can now log in with the new password.")
	return nil
}

// OAuth prints the provider redirect URL and completes the flow with a code
// pasted back by the user.
func (a *App) OAuth(ctx context.Context, provider string) error {
	printlnFn("Open this URL in your browser:")
	printlnFn(a.auth.OAuthRedirectURL(provider))

	code, err := getSimpleText(a.reader, "Paste the authorization code", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.HandleOAuthCallback(ctx, provider, code)
	if err != nil {
		printlnFn("OAuth login failed:", err)
		return err
	}

	a.userName = user.Email
	a.twoFactor.Bootstrap(user.TwoFactorEnabled)
	printlnFn("Logged in as", user.Email)
	return nil
}
