package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

// Monitor is the session watcher: a recurring probe that detects a session
// invalidated behind the client's back (deleted account, revoked token) and
// forces a logout. It is deliberately conservative about transient failure:
// ejecting a user during a connectivity blip is worse than detecting a truly
// revoked session one tick late.
type Monitor struct {
	auth     AuthService
	store    *session.Store
	interval time.Duration
	onLogout func()
	log      logging.Logger

	inFlight atomic.Bool
}

func NewMonitor(auth AuthService, store *session.Store, interval time.Duration, onLogout func(), log logging.Logger) *Monitor {
	return &Monitor{
		auth:     auth,
		store:    store,
		interval: interval,
		onLogout: onLogout,
		log:      log,
	}
}

// Run blocks until ctx is done. The first check happens immediately so a
// deleted account is caught promptly after startup, not one interval later.
func (m *Monitor) Run(ctx context.Context) {
	m.CheckOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckOnce runs a single validation pass. While a check is in flight a new
// tick is a no-op; the guard is cleared even when the probe panics. Exported
// so tests can drive ticks without real delays.
func (m *Monitor) CheckOnce(ctx context.Context) {
	if !m.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer m.inFlight.Store(false)

	token, err := m.store.Token(ctx)
	if err != nil || token == "" {
		return
	}

	_, err = m.auth.CurrentUser(ctx)
	switch {
	case err == nil:
		return

	case errors.Is(err, common.ErrUnauthorized):
		m.invalidate(ctx, "token rejected by backend")

	case errors.Is(err, common.ErrUserGone):
		// Ambiguous: the backend answered cleanly but without a user. Could
		// still be a hiccup somewhere in the chain, so re-probe once before
		// concluding the account is gone.
		_, retryErr := m.auth.CurrentUser(ctx)
		if retryErr == nil {
			return
		}
		if errors.Is(retryErr, common.ErrUserGone) || errors.Is(retryErr, common.ErrUnauthorized) {
			m.invalidate(ctx, "account no longer present on backend")
		}

	default:
		// Timeout, 5xx, offline: no state change.
		m.log.Debug(ctx, "session check failed transiently", "error", err)
	}
}

func (m *Monitor) invalidate(ctx context.Context, reason string) {
	m.log.Warn(ctx, "session invalidated", "reason", reason)

	if err := m.store.ClearSession(ctx); err != nil {
		m.log.Error(ctx, "failed to clear invalidated session", "error", err)
	}
	if m.onLogout != nil {
		m.onLogout()
	}
}
