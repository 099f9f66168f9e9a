package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token and auth mode attached to outgoing
// requests. The persisted session store implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	AuthMode(ctx context.Context) (string, error)
}

// AuthTransport decorates a RoundTripper with the auth concerns every request
// shares: a request ID, the bearer token from the session store, an outbound
// rate limit, and the 401 invalidation hook.
//
// OnUnauthorized fires only when this transport actually attached a token and
// the stored auth mode is "backend"; a 401 on an anonymous request (e.g. a
// failed login) is an ordinary error for the caller, not an invalidation.
type AuthTransport struct {
	Base           http.RoundTripper
	Tokens         TokenSource
	Limiter        *rate.Limiter
	OnUnauthorized func()
	Log            logging.Logger
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(ctx)
	clone.Header.Set("X-Request-ID", uuid.NewString())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "application/json")
	}

	attached := false
	if t.Tokens != nil {
		token, err := t.Tokens.Token(ctx)
		if err == nil && token != "" {
			clone.Header.Set("Authorization", "Bearer "+token)
			attached = true
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && attached && t.OnUnauthorized != nil {
		mode, merr := t.Tokens.AuthMode(ctx)
		if merr == nil && mode == common.AuthModeBackend {
			if t.Log != nil {
				t.Log.Warn(ctx, "authenticated request rejected with 401, invalidating session",
					"url", req.URL.Path)
			}
			t.OnUnauthorized()
		}
	}

	return resp, nil
}
