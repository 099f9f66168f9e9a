package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pquerna/otp"
	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

// enrollmentTTL bounds how long an issued secret stays verifiable. When it
// passes, the pending secret is discarded and a fresh one is requested, so a
// user who walked away never verifies against a stale secret.
const enrollmentTTL = 5 * time.Minute

// afterFunc is a seam for tests to fire the enrollment deadline synchronously.
var afterFunc = time.AfterFunc

// TwoFactorState is the enrollment state machine position.
type TwoFactorState int

const (
	TwoFactorDisabled TwoFactorState = iota
	TwoFactorEnrolling
	TwoFactorEnabled
)

func (s TwoFactorState) String() string {
	switch s {
	case TwoFactorEnrolling:
		return "enrolling"
	case TwoFactorEnabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// TwoFactorService drives TOTP enrollment: request a secret, verify one code,
// surface recovery codes exactly once, and step-up disable. Only one pending
// enrollment exists at a time; starting a new one invalidates the previous
// secret wholesale.
type TwoFactorService struct {
	client api.Client
	store  *session.Store
	log    logging.Logger

	mu         sync.Mutex
	state      TwoFactorState
	enrollment *models.TwoFactorEnrollment

	// pendingCodes is non-nil only between a successful verification and the
	// user's acknowledgment. After acknowledgment the codes are unrecoverable.
	pendingCodes []string

	// generation increments on every transition that should kill outstanding
	// deadline timers. A timer whose generation no longer matches is stale.
	generation uint64
	timer      *time.Timer
}

func NewTwoFactorService(client api.Client, store *session.Store, log logging.Logger) *TwoFactorService {
	return &TwoFactorService{client: client, store: store, log: log}
}

// Bootstrap sets the initial state from the authoritative user record.
// Called after login and profile sync; a pending enrollment is discarded.
func (t *TwoFactorService) Bootstrap(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()
	if enabled {
		t.state = TwoFactorEnabled
	} else {
		t.state = TwoFactorDisabled
	}
}

// State reports the current machine position.
func (t *TwoFactorService) State() TwoFactorState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Enrollment returns the pending enrollment, or nil outside the enrolling
// state.
func (t *TwoFactorService) Enrollment() *models.TwoFactorEnrollment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TwoFactorEnrolling || t.enrollment == nil {
		return nil
	}
	e := *t.enrollment
	e.RecoveryCodes = append([]string(nil), t.enrollment.RecoveryCodes...)
	return &e
}

// Enable starts (or restarts) enrollment. A previous pending secret is
// replaced wholesale and its deadline timer is disarmed. Calling Enable while
// already enabled is an error; the backend requires disable first.
func (t *TwoFactorService) Enable(ctx context.Context) (*models.TwoFactorEnrollment, error) {
	t.mu.Lock()
	if t.state == TwoFactorEnabled {
		t.mu.Unlock()
		return nil, common.ErrTwoFactorAlreadyEnabled
	}
	t.mu.Unlock()

	setup, err := t.client.TwoFactorEnable(ctx)
	if err != nil {
		return nil, err
	}

	enrollment := &models.TwoFactorEnrollment{
		Secret:        setup.Secret,
		QRPayload:     setup.QRCode,
		RecoveryCodes: setup.RecoveryCodes,
		Deadline:      time.Now().Add(enrollmentTTL),
	}
	if key, err := otp.NewKeyFromURL(setup.QRCode); err == nil {
		enrollment.Issuer = key.Issuer()
		enrollment.Account = key.AccountName()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TwoFactorEnabled {
		// Verified concurrently while the request was in flight.
		return nil, common.ErrTwoFactorAlreadyEnabled
	}

	t.stopTimerLocked()
	t.generation++
	gen := t.generation
	t.state = TwoFactorEnrolling
	t.enrollment = enrollment
	t.pendingCodes = nil
	t.timer = afterFunc(enrollmentTTL, func() { t.onDeadline(gen) })

	return enrollment, nil
}

// onDeadline fires when a pending secret expires. The enrollment is restarted
// so the user always scans a secret the backend still accepts.
func (t *TwoFactorService) onDeadline(gen uint64) {
	t.mu.Lock()
	if gen != t.generation || t.state != TwoFactorEnrolling {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	ctx := context.Background()
	t.log.Warn(ctx, "two-factor enrollment deadline passed, requesting a fresh secret")
	if _, err := t.Enable(ctx); err != nil {
		t.log.Error(ctx, "failed to reissue two-factor secret", "error", err)
		t.Cancel()
	}
}

// Verify submits one TOTP code. On success the account is enabled, the
// recovery codes become pending for a single acknowledgment, and the cached
// user record is updated. A wrong code keeps the enrollment and its deadline
// untouched so the user can retry.
func (t *TwoFactorService) Verify(ctx context.Context, code string) ([]string, error) {
	t.mu.Lock()
	if t.state != TwoFactorEnrolling || t.enrollment == nil {
		t.mu.Unlock()
		return nil, common.ErrTwoFactorNotEnrolling
	}
	codes := append([]string(nil), t.enrollment.RecoveryCodes...)
	t.mu.Unlock()

	if !validTOTPFormat(code) {
		return nil, common.ErrInvalidTwoFactorCode
	}

	if err := t.client.TwoFactorVerify(ctx, code); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return nil, common.ErrInvalidTwoFactorCode
		}
		var vErr *api.ValidationError
		if errors.As(err, &vErr) {
			return nil, common.ErrInvalidTwoFactorCode
		}
		return nil, err
	}

	t.mu.Lock()
	t.stopTimerLocked()
	t.generation++
	t.state = TwoFactorEnabled
	t.enrollment = nil
	t.pendingCodes = codes
	t.mu.Unlock()

	if err := t.markEnabled(ctx, true); err != nil {
		t.log.Error(ctx, "failed to update cached two-factor flag", "error", err)
	}
	return append([]string(nil), codes...), nil
}

// RecoveryCodes returns the codes awaiting acknowledgment, or nil when none
// are pending.
func (t *TwoFactorService) RecoveryCodes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pendingCodes == nil {
		return nil
	}
	return append([]string(nil), t.pendingCodes...)
}

// AcknowledgeRecoveryCodes discards the pending codes. After this call they
// cannot be retrieved again through any operation.
func (t *TwoFactorService) AcknowledgeRecoveryCodes() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.pendingCodes {
		t.pendingCodes[i] = ""
	}
	t.pendingCodes = nil
}

// Disable turns two-factor off. The backend requires the account password as
// a step-up check. All local two-factor material is discarded.
func (t *TwoFactorService) Disable(ctx context.Context, password string) error {
	t.mu.Lock()
	if t.state != TwoFactorEnabled {
		t.mu.Unlock()
		return common.ErrTwoFactorNotEnabled
	}
	t.mu.Unlock()

	if err := t.client.TwoFactorDisable(ctx, password); err != nil {
		return err
	}

	t.mu.Lock()
	t.resetLocked()
	t.mu.Unlock()

	if err := t.markEnabled(ctx, false); err != nil {
		t.log.Error(ctx, "failed to update cached two-factor flag", "error", err)
	}
	return nil
}

// Cancel abandons a pending enrollment. The issued secret is dropped locally;
// the backend invalidates it on its own once a new one is requested.
func (t *TwoFactorService) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TwoFactorEnrolling {
		return
	}
	t.resetLocked()
}

func (t *TwoFactorService) resetLocked() {
	t.stopTimerLocked()
	t.generation++
	t.state = TwoFactorDisabled
	t.enrollment = nil
	for i := range t.pendingCodes {
		t.pendingCodes[i] = ""
	}
	t.pendingCodes = nil
}

func (t *TwoFactorService) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// markEnabled mirrors the flag into the persisted user record and the cached
// profile projection so the UI reads a consistent answer after restart.
func (t *TwoFactorService) markEnabled(ctx context.Context, enabled bool) error {
	rec, err := t.store.Session(ctx)
	if err != nil {
		return err
	}
	if rec == nil || rec.User == nil {
		return nil
	}

	rec.User.TwoFactorEnabled = enabled
	if err := t.store.SaveSession(ctx, rec); err != nil {
		return fmt.Errorf("failed to persist user record: %w", err)
	}

	profile, err := t.store.Profile(ctx)
	if err != nil {
		return err
	}
	if profile != nil {
		profile.TwoFactorEnabled = enabled
		if err := t.store.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to persist profile cache: %w", err)
		}
	}
	return nil
}

func validTOTPFormat(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
