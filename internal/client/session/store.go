// Package session is the typed layer over the persisted slot store: the
// single source of truth for "is someone logged in". Only the login family,
// logout, the session watcher, and the profile sync are allowed to write it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/repositories/slots"
	"github.com/velora-digital/siteauth/internal/common"
	"github.com/velora-digital/siteauth/internal/logging"
)

// Slot keys. The dashboard token is mirrored into its own slot so a copied or
// partially restored dashboard record fails the equality check.
const (
	slotToken              = "token"
	slotUser               = "user"
	slotAuthMode           = "auth_mode"
	slotProfileCache       = "profile_cache"
	slotDashboardSession   = "dashboard_session"
	slotDashboardToken     = "dashboard_token"
	slotRememberedUsername = "remembered_username"
)

// EventKind identifies what changed in the store.
type EventKind int

const (
	EventSessionSaved EventKind = iota
	EventSessionCleared
	EventDashboardSaved
	EventDashboardCleared
)

type Event struct {
	Kind EventKind
}

// Store wraps a slot repository with the session data model and change
// notification. All writes are atomic from the caller's point of view.
type Store struct {
	repo slots.Repository
	log  logging.Logger

	mu   sync.Mutex
	subs []func(Event)
}

func NewStore(repo slots.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// Subscribe registers a change listener. Listeners are invoked synchronously
// after the write that produced the event has been persisted.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(e Event) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// SaveSession overwrites the primary session wholesale. Token and user are
// written in one atomic batch so no observer ever sees one without the other.
func (s *Store) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	if rec == nil || rec.Token == "" || rec.User == nil {
		return fmt.Errorf("refusing to store a partial session record")
	}

	user, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	mode := rec.Mode
	if mode == "" {
		mode = common.AuthModeBackend
	}

	err = s.repo.SetMany(ctx, map[string][]byte{
		slotToken:    []byte(rec.Token),
		slotUser:     user,
		slotAuthMode: []byte(mode),
	})
	if err != nil {
		return err
	}

	s.notify(Event{Kind: EventSessionSaved})
	return nil
}

// Session returns the current session record, or (nil, nil) when nobody is
// logged in. A half-present record (token without user or vice versa) is
// treated as absent.
func (s *Store) Session(ctx context.Context) (*models.SessionRecord, error) {
	token, err := s.repo.Get(ctx, slotToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Get(ctx, slotUser)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 || len(user) == 0 {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(user, &u); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}

	mode, err := s.repo.Get(ctx, slotAuthMode)
	if err != nil {
		return nil, err
	}

	return &models.SessionRecord{Token: string(token), User: &u, Mode: string(mode)}, nil
}

// Token implements api.TokenSource. It returns "" when there is no complete
// session record.
func (s *Store) Token(ctx context.Context) (string, error) {
	rec, err := s.Session(ctx)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.Token, nil
}

// AuthMode implements api.TokenSource.
func (s *Store) AuthMode(ctx context.Context) (string, error) {
	mode, err := s.repo.Get(ctx, slotAuthMode)
	if err != nil {
		return "", err
	}
	return string(mode), nil
}

// ClearSession removes the primary session and everything derived from it.
// The dashboard session is independently owned and survives.
func (s *Store) ClearSession(ctx context.Context) error {
	err := s.repo.DeleteMany(ctx, slotToken, slotUser, slotAuthMode, slotProfileCache)
	if err != nil {
		return err
	}
	s.notify(Event{Kind: EventSessionCleared})
	return nil
}

// SaveProfile overwrites the cached profile projection wholesale.
func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return s.repo.Delete(ctx, slotProfileCache)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.repo.Set(ctx, slotProfileCache, data)
}

// Profile returns the cached profile projection, or (nil, nil) when absent.
// It is a cache for instant render only; authoritative reads go through the
// auth service's profile sync.
func (s *Store) Profile(ctx context.Context) (*models.Profile, error) {
	data, err := s.repo.Get(ctx, slotProfileCache)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored profile: %w", err)
	}
	return &p, nil
}

// SaveDashboardSession writes the dashboard record together with its shadow
// token slot in one atomic batch.
func (s *Store) SaveDashboardSession(ctx context.Context, rec *models.DashboardSession) error {
	if rec == nil || rec.Token == "" {
		return fmt.Errorf("refusing to store a dashboard session without a token")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard session: %w", err)
	}

	err = s.repo.SetMany(ctx, map[string][]byte{
		slotDashboardSession: data,
		slotDashboardToken:   []byte(rec.Token),
	})
	if err != nil {
		return err
	}

	s.notify(Event{Kind: EventDashboardSaved})
	return nil
}

// DashboardSession returns the stored dashboard record, or (nil, nil) when
// absent. Presence alone does not grant access; see DashboardToken.
func (s *Store) DashboardSession(ctx context.Context) (*models.DashboardSession, error) {
	data, err := s.repo.Get(ctx, slotDashboardSession)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var rec models.DashboardSession
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard session: %w", err)
	}
	return &rec, nil
}

// DashboardToken returns the shadow token slot.
func (s *Store) DashboardToken(ctx context.Context) (string, error) {
	data, err := s.repo.Get(ctx, slotDashboardToken)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) ClearDashboardSession(ctx context.Context) error {
	err := s.repo.DeleteMany(ctx, slotDashboardSession, slotDashboardToken)
	if err != nil {
		return err
	}
	s.notify(Event{Kind: EventDashboardCleared})
	return nil
}

// Remembered username: written and cleared only by the dashboard login form.
func (s *Store) SetRememberedUsername(ctx context.Context, username string) error {
	return s.repo.Set(ctx, slotRememberedUsername, []byte(username))
}

func (s *Store) RememberedUsername(ctx context.Context) (string, error) {
	data, err := s.repo.Get(ctx, slotRememberedUsername)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) ClearRememberedUsername(ctx context.Context) error {
	return s.repo.Delete(ctx, slotRememberedUsername)
}

// Wipe drops every slot. Used by tests and the CLI's hard reset.
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.notify(Event{Kind: EventSessionCleared})
	s.notify(Event{Kind: EventDashboardCleared})
	return nil
}
