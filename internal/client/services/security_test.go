package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velora-digital/siteauth/internal/client/models"
	"github.com/velora-digital/siteauth/internal/common"
)

func TestSecurity_ChangePasswordMismatchStaysLocal(t *testing.T) {
	client := &fakeClient{}
	svc := NewSecurityService(client, testLogger())

	err := svc.ChangePassword(context.Background(), "old", "new1", "new2")
	require.ErrorIs(t, err, common.ErrPasswordMismatch)
}

func TestSecurity_ChangePasswordPassesThrough(t *testing.T) {
	client := &fakeClient{}
	svc := NewSecurityService(client, testLogger())

	require.NoError(t, svc.ChangePassword(context.Background(), "old", "new", "new"))
}

func TestSecurity_LoginHistoryDefaultsLimit(t *testing.T) {
	client := &fakeClient{
		History: []models.LoginEvent{
			{ID: "1", IPAddress: "10.0.0.1", Succeeded: true, CreatedAt: time.Now()},
		},
	}
	svc := NewSecurityService(client, testLogger())

	events, err := svc.LoginHistory(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, defaultHistoryLimit, client.LastHistoryLimit)

	_, err = svc.LoginHistory(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 5, client.LastHistoryLimit)
}

func TestSecurity_RevokeSessionPassesID(t *testing.T) {
	client := &fakeClient{
		RemoteSess: []models.RemoteSession{{ID: "sess-9", Current: false}},
	}
	svc := NewSecurityService(client, testLogger())

	sessions, err := svc.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, svc.RevokeSession(context.Background(), sessions[0].ID))
	require.Equal(t, "sess-9", client.LastRevokedID)
}
