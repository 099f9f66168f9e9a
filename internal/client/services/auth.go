// Package services contains the application services of the site client:
// primary authentication, the dashboard gate, the session watcher, the
// two-factor enrollment flow, and account security operations.
package services

import (
	"context"
	"fmt"

	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

// AuthService defines the primary authentication operations.
//
// Contract:
//   - Login/Register/HandleOAuthCallback: authenticate against the backend
//     and overwrite the persisted session record wholesale on success.
//   - Logout: best-effort remote invalidation; the local session is always
//     cleared, even when the remote call fails.
//   - CurrentUser: short-timeout liveness read; callers must not treat a
//     failure as conclusive proof of "not logged in" without a retry.
//   - SyncProfile: authoritative profile re-fetch; overwrites the cached
//     user record and profile projection, never patches them.
type AuthService interface {
	Register(ctx context.Context, name, username, email, password, confirmation string) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	SyncProfile(ctx context.Context) (*models.Profile, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, email, password, confirmation string) (string, error)
	OAuthRedirectURL(provider string) string
	HandleOAuthCallback(ctx context.Context, provider, code string) (*models.User, error)
}

type authService struct {
	client api.Client
	store  *session.Store
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(client api.Client, store *session.Store, log logging.Logger) AuthService {
	return &authService{client: client, store: store, log: log}
}

func (a *authService) saveSession(ctx context.Context, result *api.AuthResult) (*models.User, error) {
	user := result.User
	rec := &models.SessionRecord{
		Token: result.Token,
		User:  &user,
		Mode:  common.AuthModeBackend,
	}
	if err := a.store.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &user, nil
}

func (a *authService) Register(ctx context.Context, name, username, email, password, confirmation string) (*models.User, error) {
	result, err := a.client.Register(ctx, name, username, email, password, confirmation)
	if err != nil {
		return nil, err
	}
	return a.saveSession(ctx, result)
}

// Login authenticates with an email or username and replaces any prior
// session record entirely.
func (a *authService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	result, err := a.client.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	return a.saveSession(ctx, result)
}

// Logout invalidates the session remotely on a best-effort basis and always
// clears it locally. A failed remote call must never leave the user logged in.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}
	return a.store.ClearSession(ctx)
}

// CurrentUser performs the liveness read. Error classification matters to the
// session watcher: common.ErrUnauthorized is a confirmed invalidation,
// common.ErrUserGone is a clean "account disappeared" answer, and anything
// else is a transient failure that must not mutate state.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	info, err := a.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &info.User, nil
}

// SyncProfile re-fetches the authoritative user record and overwrites both
// the session's user and the cached profile projection wholesale.
func (a *authService) SyncProfile(ctx context.Context) (*models.Profile, error) {
	rec, err := a.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, common.ErrNoSession
	}

	info, err := a.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	rec.User = &info.User
	if err := a.store.SaveSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed user: %w", err)
	}

	profile := info.Profile
	if profile == nil {
		profile = &models.Profile{TwoFactorEnabled: info.User.TwoFactorEnabled}
	}
	if err := a.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to persist profile cache: %w", err)
	}
	return profile, nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return a.client.ForgotPassword(ctx, email)
}

// ResetPassword validates the confirmation locally before anything is sent;
// a mismatch never reaches the backend. A successful reset does not establish
// a session.
func (a *authService) ResetPassword(ctx context.Context, token, email, password, confirmation string) (string, error) {
	if password != confirmation {
		return "", common.ErrPasswordMismatch
	}
	return a.client.ResetPassword(ctx, token, email, password, confirmation)
}

func (a *authService) OAuthRedirectURL(provider string) string {
	return a.client.OAuthRedirectURL(provider)
}

// HandleOAuthCallback exchanges the authorization code for a session. The
// result is indistinguishable from a password login for all downstream
// consumers.
func (a *authService) HandleOAuthCallback(ctx context.Context, provider, code string) (*models.User, error) {
	result, err := a.client.OAuthCallback(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	return a.saveSession(ctx, result)
}
