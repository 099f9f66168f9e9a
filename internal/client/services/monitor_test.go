package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velora-digital/siteauth/internal/client/api"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/client/session"
	"github.com/velora-digital/siteauth/internal/common"
)

func monitorFixture(t *testing.T, client *fakeClient) (*Monitor, *session.Store, *int) {
	t.Helper()
	store := testStore()
	auth := NewAuthService(client, store, testLogger())
	logouts := 0
	m := NewMonitor(auth, store, time.Minute, func() { logouts++ }, testLogger())
	return m, store, &logouts
}

func seedSession(t *testing.T, store *session.Store) {
	t.Helper()
	err := store.SaveSession(context.Background(), &models.SessionRecord{
		Token: "tok",
		User:  &models.User{ID: 1, Email: "a@example.com"},
	})
	require.NoError(t, err)
}

func TestMonitor_NoSessionSkipsProbe(t *testing.T) {
	client := &fakeClient{}
	m, _, logouts := monitorFixture(t, client)

	m.CheckOnce(context.Background())

	require.Zero(t, client.CurrentUserCalls)
	require.Zero(t, *logouts)
}

func TestMonitor_ValidSessionIsLeftAlone(t *testing.T) {
	client := &fakeClient{
		UserInfo: &api.UserInfo{User: models.User{ID: 1, Email: "a@example.com"}},
	}
	m, store, logouts := monitorFixture(t, client)
	seedSession(t, store)

	m.CheckOnce(context.Background())

	require.Equal(t, 1, client.CurrentUserCalls)
	require.Zero(t, *logouts)

	rec, err := store.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestMonitor_UnauthorizedInvalidatesImmediately(t *testing.T) {
	client := &fakeClient{CurrentUserErr: &api.AuthError{}}
	m, store, logouts := monitorFixture(t, client)
	seedSession(t, store)

	m.CheckOnce(context.Background())

	require.Equal(t, 1, *logouts)

	rec, err := store.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestMonitor_UserGoneOnceThenRecoveredIsBenign(t *testing.T) {
	client := &fakeClient{
		UserInfo:        &api.UserInfo{User: models.User{ID: 1, Email: "a@example.com"}},
		CurrentUserErrs: []error{common.ErrUserGone, nil},
	}
	m, store, logouts := monitorFixture(t, client)
	seedSession(t, store)

	m.CheckOnce(context.Background())

	require.Equal(t, 2, client.CurrentUserCalls)
	require.Zero(t, *logouts)

	rec, err := store.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestMonitor_UserGoneTwiceLogsOutExactlyOnce(t *testing.T) {
	client := &fakeClient{CurrentUserErr: common.ErrUserGone}
	m, store, logouts := monitorFixture(t, client)
	seedSession(t, store)

	m.CheckOnce(context.Background())

	require.Equal(t, 2, client.CurrentUserCalls)
	require.Equal(t, 1, *logouts)

	rec, err := store.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestMonitor_TransientFailureChangesNothing(t *testing.T) {
	client := &fakeClient{CurrentUserErr: &api.TransientError{Err: context.DeadlineExceeded}}
	m, store, logouts := monitorFixture(t, client)
	seedSession(t, store)

	m.CheckOnce(context.Background())

	require.Zero(t, *logouts)

	rec, err := store.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestMonitor_OverlappingCheckIsANoOp(t *testing.T) {
	client := &fakeClient{
		UserInfo: &api.UserInfo{User: models.User{ID: 1, Email: "a@example.com"}},
	}
	m, store, _ := monitorFixture(t, client)
	seedSession(t, store)

	m.inFlight.Store(true)
	m.CheckOnce(context.Background())
	require.Zero(t, client.CurrentUserCalls)

	m.inFlight.Store(false)
	m.CheckOnce(context.Background())
	require.Equal(t, 1, client.CurrentUserCalls)
}

func TestMonitor_RunStopsOnContextCancel(t *testing.T) {
	client := &fakeClient{
		UserInfo: &api.UserInfo{User: models.User{ID: 1, Email: "a@example.com"}},
	}
	m, store, _ := monitorFixture(t, client)
	seedSession(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// The immediate first check runs before the ticker loop.
	require.Eventually(t, func() bool { return client.CurrentUserCalls >= 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
}
