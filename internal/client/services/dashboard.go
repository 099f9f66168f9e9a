package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
	"golang.org/x/crypto/scrypt"
)

// Fallback credential table for the dashboard. This is a degraded-mode path:
// it keeps the dashboard reachable when the backend is down, and it must
// never mint a primary session. Entries hold scrypt digests, never plaintext
// passwords. Production deployments are expected to provision server-side
// equivalents and treat this table as a break-glass mechanism.
type fallbackCredential struct {
	Salt string
	Hash string
}

var fallbackCredentials = map[string]fallbackCredential{
	"admin":   {Salt: "6_kEW5nqt5QYj5F_Pzq1OQ", Hash: "PU3Uj8Kqcjy_G4tixqLg2rHYlwmFdJKV38SmrXOuqLc"},
	"siteops": {Salt: "bmoZw-mZc2HceyX8TwhCMA", Hash: "hnR0bM3MctfWivFIUVhm7xbPktZwWJfsF6TkC-yDo4g"},
}

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

func verifyFallback(username, password string) bool {
	cred, ok := fallbackCredentials[username]
	if !ok {
		return false
	}

	salt, err := base64.RawURLEncoding.DecodeString(cred.Salt)
	if err != nil {
		return false
	}
	want, err := base64.RawURLEncoding.DecodeString(cred.Hash)
	if err != nil {
		return false
	}

	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

// DashboardService is the second, narrower authentication domain gating the
// admin dashboard. Its session record is locally owned: validity is defined
// by presence plus shadow-token equality, not by the backend.
type DashboardService struct {
	auth   AuthService
	client api.Client
	store  *session.Store
	log    logging.Logger

	signingKey []byte
	now        func() time.Time
}

func NewDashboardService(auth AuthService, client api.Client, store *session.Store, log logging.Logger) (*DashboardService, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate dashboard signing key: %w", err)
	}
	return &DashboardService{
		auth:       auth,
		client:     client,
		store:      store,
		log:        log,
		signingKey: key,
		now:        time.Now,
	}, nil
}

// mintToken produces the locally generated dashboard token. Consumers treat
// it as an opaque string; validity is string equality with the shadow slot.
func (d *DashboardService) mintToken(username string, loginTime time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"iat":  loginTime.Unix(),
		"jti":  uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to mint dashboard token: %w", err)
	}
	return token, nil
}

// Login authenticates for dashboard access. The backend path is tried first;
// on any backend failure the local fallback table is consulted. The fallback
// writes only the dashboard record; the primary session stays empty.
func (d *DashboardService) Login(ctx context.Context, username, password string, remember bool) (*models.DashboardSession, error) {
	if remember {
		if err := d.store.SetRememberedUsername(ctx, username); err != nil {
			return nil, err
		}
	} else {
		if err := d.store.ClearRememberedUsername(ctx); err != nil {
			return nil, err
		}
	}

	user, backendErr := d.auth.Login(ctx, username, password)
	if backendErr == nil {
		rec, err := d.newSession(models.DashboardUser{
			Username: username,
			Name:     user.Name,
			Email:    user.Email,
			Role:     "admin",
		})
		if err != nil {
			return nil, err
		}
		return rec, d.store.SaveDashboardSession(ctx, rec)
	}

	if !verifyFallback(username, password) {
		return nil, backendErr
	}

	d.log.Warn(ctx, "backend unavailable for dashboard login, using local fallback credentials",
		"username", username, "backend_error", backendErr)

	rec, err := d.newSession(models.DashboardUser{
		Username: username,
		Name:     username,
		Email:    username + "@local",
		Role:     "admin",
	})
	if err != nil {
		return nil, err
	}
	return rec, d.store.SaveDashboardSession(ctx, rec)
}

func (d *DashboardService) newSession(user models.DashboardUser) (*models.DashboardSession, error) {
	loginTime := d.now()
	token, err := d.mintToken(user.Username, loginTime)
	if err != nil {
		return nil, err
	}
	return &models.DashboardSession{User: user, LoginTime: loginTime, Token: token}, nil
}

// IsAuthenticated reports whether the dashboard route may be entered: a
// record must exist and its embedded token must equal the shadow slot. The
// double check rejects a record copied or restored without its token.
func (d *DashboardService) IsAuthenticated(ctx context.Context) (bool, error) {
	rec, err := d.store.DashboardSession(ctx)
	if err != nil {
		return false, err
	}
	if rec == nil || rec.Token == "" {
		return false, nil
	}

	shadow, err := d.store.DashboardToken(ctx)
	if err != nil {
		return false, err
	}
	return rec.Token == shadow, nil
}

func (d *DashboardService) Logout(ctx context.Context) error {
	return d.store.ClearDashboardSession(ctx)
}

// RememberedUsername pre-fills the dashboard login form.
func (d *DashboardService) RememberedUsername(ctx context.Context) (string, error) {
	return d.store.RememberedUsername(ctx)
}

// RegisterAdmin creates a dashboard account through the backend-only path.
// There is no local fallback for registration and no session side effect.
func (d *DashboardService) RegisterAdmin(ctx context.Context, name, username, email, password, confirmation string) (string, error) {
	if password != confirmation {
		return "", common.ErrPasswordMismatch
	}
	return d.client.RegisterAdmin(ctx, name, username, email, password, confirmation)
}
