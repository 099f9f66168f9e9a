package services

import (
	"context"

	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

const defaultHistoryLimit = 20

// SecurityService covers the account security operations that act on the
// backend but carry no local session state: password change, login history,
// and remote session management.
type SecurityService struct {
	client api.Client
	log    logging.Logger
}

func NewSecurityService(client api.Client, log logging.Logger) *SecurityService {
	return &SecurityService{client: client, log: log}
}

// ChangePassword checks the confirmation locally first; a mismatch never
// reaches the backend. The current session stays valid after a successful
// change.
func (s *SecurityService) ChangePassword(ctx context.Context, current, password, confirmation string) error {
	if password != confirmation {
		return common.ErrPasswordMismatch
	}
	return s.client.ChangePassword(ctx, current, password, confirmation)
}

// LoginHistory returns the most recent login events, newest first. A
// non-positive limit falls back to the default page size.
func (s *SecurityService) LoginHistory(ctx context.Context, limit int) ([]models.LoginEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.client.LoginHistory(ctx, limit)
}

// Sessions lists the account's active backend sessions, the current one
// flagged.
func (s *SecurityService) Sessions(ctx context.Context) ([]models.RemoteSession, error) {
	return s.client.Sessions(ctx)
}

// RevokeSession terminates one remote session by id. Revoking the current
// session is equivalent to a logout and is left to the caller to follow up on.
func (s *SecurityService) RevokeSession(ctx context.Context, id string) error {
	return s.client.RevokeSession(ctx, id)
}
