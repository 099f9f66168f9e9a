package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/repositories/slots"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testStore() *session.Store {
	return session.NewStore(slots.NewMemoryRepository(), testLogger())
}

// fakeClient implements api.Client with canned results per method. Errors win
// over results. CurrentUserErrs, when non-empty, yields one error per call so
// tests can script sequences like "fail once, then recover".
type fakeClient struct {
	AuthResult *api.AuthResult
	AuthErr    error

	UserInfo        *api.UserInfo
	CurrentUserErr  error
	CurrentUserErrs []error

	Message    string
	MessageErr error

	Setup    *api.TwoFactorSetup
	SetupErr error

	VerifyErr  error
	DisableErr error

	History    []models.LoginEvent
	RemoteSess []models.RemoteSession
	ActionErr  error

	LogoutErr error

	LoginCalls       int
	CurrentUserCalls int
	EnableCalls      int
	LogoutCalls      int

	LastLoginIdentifier string
	LastVerifyCode      string
	LastDisablePassword string
	LastHistoryLimit    int
	LastRevokedID       string
}

func (f *fakeClient) Register(ctx context.Context, name, username, email, password, confirmation string) (*api.AuthResult, error) {
	return f.AuthResult, f.AuthErr
}

func (f *fakeClient) Login(ctx context.Context, identifier, password string) (*api.AuthResult, error) {
	f.LoginCalls++
	f.LastLoginIdentifier = identifier
	return f.AuthResult, f.AuthErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) CurrentUser(ctx context.Context) (*api.UserInfo, error) {
	f.CurrentUserCalls++
	if len(f.CurrentUserErrs) > 0 {
		err := f.CurrentUserErrs[0]
		f.CurrentUserErrs = f.CurrentUserErrs[1:]
		if err != nil {
			return nil, err
		}
		return f.UserInfo, nil
	}
	if f.CurrentUserErr != nil {
		return nil, f.CurrentUserErr
	}
	return f.UserInfo, nil
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	return f.Message, f.MessageErr
}

func (f *fakeClient) ResetPassword(ctx context.Context, token, email, password, confirmation string) (string, error) {
	return f.Message, f.MessageErr
}

func (f *fakeClient) OAuthRedirectURL(provider string) string {
	return "https://example.com/auth/" + provider + "/redirect"
}

func (f *fakeClient) OAuthCallback(ctx context.Context, provider, code string) (*api.AuthResult, error) {
	return f.AuthResult, f.AuthErr
}

func (f *fakeClient) RegisterAdmin(ctx context.Context, name, username, email, password, confirmation string) (string, error) {
	return f.Message, f.MessageErr
}

func (f *fakeClient) ChangePassword(ctx context.Context, current, password, confirmation string) error {
	return f.ActionErr
}

func (f *fakeClient) TwoFactorEnable(ctx context.Context) (*api.TwoFactorSetup, error) {
	f.EnableCalls++
	return f.Setup, f.SetupErr
}

func (f *fakeClient) TwoFactorVerify(ctx context.Context, code string) error {
	f.LastVerifyCode = code
	return f.VerifyErr
}

func (f *fakeClient) TwoFactorDisable(ctx context.Context, password string) error {
	f.LastDisablePassword = password
	return f.DisableErr
}

func (f *fakeClient) LoginHistory(ctx context.Context, limit int) ([]models.LoginEvent, error) {
	f.LastHistoryLimit = limit
	return f.History, f.ActionErr
}

func (f *fakeClient) Sessions(ctx context.Context) ([]models.RemoteSession, error) {
	return f.RemoteSess, f.ActionErr
}

func (f *fakeClient) RevokeSession(ctx context.Context, id string) error {
	f.LastRevokedID = id
	return f.ActionErr
}

var _ api.Client = (*fakeClient)(nil)
