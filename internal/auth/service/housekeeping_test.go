package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := newTestClient(t, st, domain.ClientConfidential, scope.Public)

	now := time.Now().UTC()
	old := now.Add(-180 * 24 * time.Hour)

	// Seed rows on both sides of the retention window.
	expiredGrant := domain.Grant{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		Code: "expired-code", RedirectURI: client.RedirectURI,
		Scope: scope.Public, Expires: now.Add(-time.Minute), CreatedAt: old,
	}
	liveGrant := domain.Grant{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		Code: "live-code", RedirectURI: client.RedirectURI,
		Scope: scope.Public, Expires: now.Add(10 * time.Minute), CreatedAt: now,
	}
	require.NoError(t, st.Grants().CreateGrant(ctx, expiredGrant))
	require.NoError(t, st.Grants().CreateGrant(ctx, liveGrant))

	purgeable := domain.AccessToken{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		Token: "old-revoked", Expires: old.Add(time.Hour), Scope: scope.Public,
		Deleted: true, CreatedAt: old,
	}
	recentRevoked := domain.AccessToken{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		Token: "recent-revoked", Expires: now.Add(time.Hour), Scope: scope.Public,
		Deleted: true, CreatedAt: now,
	}
	require.NoError(t, st.AccessTokens().CreateAccessToken(ctx, purgeable))
	require.NoError(t, st.AccessTokens().CreateAccessToken(ctx, recentRevoked))

	spentRefresh := domain.RefreshToken{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		AccessTokenID: purgeable.ID, Token: "old-spent", Expired: true, CreatedAt: old,
	}
	liveRefresh := domain.RefreshToken{
		ID: idx.New().String(), UserID: "user-1", ClientID: client.ID,
		AccessTokenID: recentRevoked.ID, Token: "still-live", CreatedAt: old,
	}
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, spentRefresh))
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, liveRefresh))

	svc := NewHousekeepingService(st, discardLogger(), time.Hour, 90*24*time.Hour)
	svc.cleanup()

	_, err := st.Grants().GetGrantByCode(ctx, expiredGrant.Code)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Grants().GetGrantByCode(ctx, liveGrant.Code)
	require.NoError(t, err)

	_, err = st.AccessTokens().GetAccessTokenByID(ctx, purgeable.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.AccessTokens().GetAccessTokenByID(ctx, recentRevoked.ID)
	require.NoError(t, err)

	_, err = st.RefreshTokens().GetRefreshTokenByToken(ctx, spentRefresh.Token)
	require.ErrorIs(t, err, store.ErrNotFound)

	// An old but unspent refresh token is never purged.
	_, err = st.RefreshTokens().GetRefreshTokenByToken(ctx, liveRefresh.Token)
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)

	svc := NewHousekeepingService(st, discardLogger(), 10*time.Millisecond, time.Hour)
	svc.Start()
	time.Sleep(30 * time.Millisecond)
	svc.Stop()
}

func TestHousekeepingDefaults(t *testing.T) {
	svc := NewHousekeepingService(nil, discardLogger(), 0, 0)
	require.Equal(t, time.Hour, svc.Interval)
	require.Equal(t, 90*24*time.Hour, svc.Retention)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
