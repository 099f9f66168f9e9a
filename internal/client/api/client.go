// Package api implements the REST client for the site's authentication and
// security endpoints. Every response uses the shared envelope; errors are
// classified into validation, auth, server, and transient failures so the
// services layer can apply the right retry and invalidation policy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

const (
	// livenessTimeout caps CurrentUser so the session watcher never hangs on
	// a dead connection. Interactive calls use the http.Client timeout.
	livenessTimeout = 5 * time.Second

	maxResponseBody = 1 << 20
)

// AuthResult is the payload returned by every session-minting endpoint
// (login, register, OAuth callback).
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserInfo is the payload of GET /auth/user.
type UserInfo struct {
	User    models.User     `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}

// TwoFactorSetup is the payload of POST /security/2fa/enable.
type TwoFactorSetup struct {
	Secret        string   `json:"secret"`
	QRCode        string   `json:"qr_code"`
	RecoveryCodes []string `json:"recovery_codes"`
}

// Client is the backend contract consumed by the services layer.
type Client interface {
	Register(ctx context.Context, name, username, email, password, confirmation string) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*UserInfo, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, email, password, confirmation string) (string, error)
	OAuthRedirectURL(provider string) string
	OAuthCallback(ctx context.Context, provider, code string) (*AuthResult, error)

	RegisterAdmin(ctx context.Context, name, username, email, password, confirmation string) (string, error)

	ChangePassword(ctx context.Context, current, password, confirmation string) error
	TwoFactorEnable(ctx context.Context) (*TwoFactorSetup, error)
	TwoFactorVerify(ctx context.Context, code string) error
	TwoFactorDisable(ctx context.Context, password string) error
	LoginHistory(ctx context.Context, limit int) ([]models.LoginEvent, error)
	Sessions(ctx context.Context) ([]models.RemoteSession, error)
	RevokeSession(ctx context.Context, id string) error
}

// HTTPClient is the production Client. apiBase points at the versioned API
// prefix (e.g. https://example.com/api/v1); siteBase at the bare site root,
// which hosts the non-versioned /admin/register endpoint.
type HTTPClient struct {
	apiBase  string
	siteBase string
	http     *http.Client
	log      logging.Logger
}

func NewHTTPClient(apiBase, siteBase string, transport http.RoundTripper, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		apiBase:  strings.TrimRight(apiBase, "/"),
		siteBase: strings.TrimRight(siteBase, "/"),
		http:     &http.Client{Transport: transport, Timeout: timeout},
		log:      log,
	}
}

// do performs one request and classifies the outcome. Network and read
// failures become TransientError; 401 becomes AuthError; a 4xx with field
// errors becomes ValidationError; any other failure becomes ServerError.
func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	var env envelope
	// Error responses are not guaranteed to carry the envelope (proxies,
	// crashed workers); fall through to status-based classification.
	_ = json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Message: env.Message}
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && len(env.Errors) != 0:
		msg := env.Message
		if msg == "" {
			msg = "validation failed"
		}
		return nil, &ValidationError{Message: msg, Fields: env.Errors}
	case resp.StatusCode >= 500:
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	case resp.StatusCode >= 400:
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	case !env.Success:
		return nil, &ServerError{Status: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

func (c *HTTPClient) authResult(ctx context.Context, method, rawURL string, body any) (*AuthResult, error) {
	env, err := c.do(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := env.decodeData(&result); err != nil {
		return nil, fmt.Errorf("failed to decode auth payload: %w", err)
	}
	if result.Token == "" {
		return nil, &ServerError{Status: http.StatusOK, Message: "response is missing a session token"}
	}
	return &result, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, username, email, password, confirmation string) (*AuthResult, error) {
	return c.authResult(ctx, http.MethodPost, c.apiBase+"/auth/register", map[string]string{
		"name":                  name,
		"username":              username,
		"email":                 email,
		"password":              password,
		"password_confirmation": confirmation,
	})
}

// Login authenticates with an email or username. The backend accepts either
// in the email field.
func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	return c.authResult(ctx, http.MethodPost, c.apiBase+"/auth/login", map[string]string{
		"email":    identifier,
		"password": password,
	})
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, c.apiBase+"/auth/logout", nil)
	return err
}

// CurrentUser is the liveness read. It carries its own short timeout, and a
// clean "this account no longer exists" answer maps to common.ErrUserGone so
// the watcher can distinguish it from a connectivity failure.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()

	env, err := c.do(ctx, http.MethodGet, c.apiBase+"/auth/user", nil)
	if err != nil {
		var srv *ServerError
		if errors.As(err, &srv) && (srv.Status == http.StatusNotFound || srv.Status == http.StatusGone) {
			return nil, common.ErrUserGone
		}
		return nil, err
	}

	var info UserInfo
	if err := env.decodeData(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user payload: %w", err)
	}
	if info.User.ID == 0 && info.User.Email == "" {
		return nil, common.ErrUserGone
	}
	return &info, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, c.apiBase+"/auth/forgot-password", map[string]string{"email": email})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, email, password, confirmation string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, c.apiBase+"/auth/reset-password", map[string]string{
		"token":                 token,
		"email":                 email,
		"password":              password,
		"password_confirmation": confirmation,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// OAuthRedirectURL builds the browser redirect entry point for a provider.
// No request is made; the page layer opens it.
func (c *HTTPClient) OAuthRedirectURL(provider string) string {
	return c.apiBase + "/auth/" + url.PathEscape(provider) + "/redirect"
}

func (c *HTTPClient) OAuthCallback(ctx context.Context, provider, code string) (*AuthResult, error) {
	u := c.apiBase + "/auth/" + url.PathEscape(provider) + "/callback?code=" + url.QueryEscape(code)
	return c.authResult(ctx, http.MethodGet, u, nil)
}

// RegisterAdmin creates a dashboard account. It lives on the site root, not
// the versioned API prefix, and never mints a session.
func (c *HTTPClient) RegisterAdmin(ctx context.Context, name, username, email, password, confirmation string) (string, error) {
	env, err := c.do(ctx, http.MethodPost, c.siteBase+"/admin/register", map[string]string{
		"name":                  name,
		"username":              username,
		"email":                 email,
		"password":              password,
		"password_confirmation": confirmation,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, password, confirmation string) error {
	_, err := c.do(ctx, http.MethodPost, c.apiBase+"/security/change-password", map[string]string{
		"current_password":      current,
		"password":              password,
		"password_confirmation": confirmation,
	})
	return err
}

func (c *HTTPClient) TwoFactorEnable(ctx context.Context) (*TwoFactorSetup, error) {
	env, err := c.do(ctx, http.MethodPost, c.apiBase+"/security/2fa/enable", nil)
	if err != nil {
		return nil, err
	}

	var setup TwoFactorSetup
	if err := env.decodeData(&setup); err != nil {
		return nil, fmt.Errorf("failed to decode 2fa setup payload: %w", err)
	}
	if setup.Secret == "" {
		return nil, &ServerError{Status: http.StatusOK, Message: "response is missing the 2fa secret"}
	}
	return &setup, nil
}

func (c *HTTPClient) TwoFactorVerify(ctx context.Context, code string) error {
	_, err := c.do(ctx, http.MethodPost, c.apiBase+"/security/2fa/verify", map[string]string{"code": code})
	return err
}

func (c *HTTPClient) TwoFactorDisable(ctx context.Context, password string) error {
	_, err := c.do(ctx, http.MethodPost, c.apiBase+"/security/2fa/disable", map[string]string{"password": password})
	return err
}

func (c *HTTPClient) LoginHistory(ctx context.Context, limit int) ([]models.LoginEvent, error) {
	env, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/security/login-history?limit=%d", c.apiBase, limit), nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		History []models.LoginEvent `json:"history"`
	}
	if err := env.decodeData(&data); err != nil {
		return nil, fmt.Errorf("failed to decode login history: %w", err)
	}
	return data.History, nil
}

func (c *HTTPClient) Sessions(ctx context.Context) ([]models.RemoteSession, error) {
	env, err := c.do(ctx, http.MethodGet, c.apiBase+"/security/sessions", nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Sessions []models.RemoteSession `json:"sessions"`
	}
	if err := env.decodeData(&data); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return data.Sessions, nil
}

func (c *HTTPClient) RevokeSession(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.apiBase+"/security/sessions/"+url.PathEscape(id), nil)
	return err
}

var _ Client = (*HTTPClient)(nil)
