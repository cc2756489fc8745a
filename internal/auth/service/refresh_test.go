package service

import (
	"context"
	"testing"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/policy"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/stretchr/testify/require"
)

func TestRefreshIssue(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := newTestClient(t, st, domain.ClientConfidential, scope.Public)

	tokens := &TokenService{Store: st}
	svc := &RefreshService{Store: st}

	tok, err := tokens.Issue(ctx, IssueParams{UserID: "user-1", ClientID: client.ClientID, Scope: scope.Public})
	require.NoError(t, err)

	rt, err := svc.Issue(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, tok.ID, rt.AccessTokenID)
	require.Equal(t, tok.UserID, rt.UserID)
	require.False(t, rt.Expired)

	// Only one live refresh token per access token.
	_, err = svc.Issue(ctx, tok)
	require.ErrorIs(t, err, ErrRefreshExists)
}

func TestRefreshRedeem(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	client := newTestClient(t, st, domain.ClientConfidential, scope.Public|scope.Profile)
	other := newTestClient(t, st, domain.ClientConfidential, scope.Public|scope.Profile)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := policy.FixedClock{At: now}
	grants := &GrantService{Store: st, Clock: clock}
	tokens := &TokenService{Store: st, Clock: clock}
	svc := &RefreshService{Store: st, Clock: clock}

	mint := func(t *testing.T, userID string) (domain.AccessToken, domain.RefreshToken) {
		t.Helper()
		g, err := grants.Issue(ctx, userID, client.ClientID, scope.Profile, client.RedirectURI)
		require.NoError(t, err)
		tok, refresh, err := tokens.ExchangeGrant(ctx, g.Code, client.ClientID, client.RedirectURI)
		require.NoError(t, err)
		require.NotNil(t, refresh)
		return tok, *refresh
	}

	t.Run("rotation", func(t *testing.T) {
		oldTok, oldRefresh := mint(t, "user-1")

		newTok, newRefresh, err := svc.Redeem(ctx, oldRefresh.Token, client.ClientID)
		require.NoError(t, err)

		require.NotEqual(t, oldTok.Token, newTok.Token)
		require.NotEqual(t, oldRefresh.Token, newRefresh.Token)
		require.Equal(t, oldTok.UserID, newTok.UserID)
		require.Equal(t, oldTok.Scope, newTok.Scope)
		require.Equal(t, newTok.ID, newRefresh.AccessTokenID)

		// Old pair is dead: access token revoked, refresh token spent.
		_, err = tokens.Validate(ctx, oldTok.Token)
		require.ErrorIs(t, err, ErrTokenNotFound)

		_, _, err = svc.Redeem(ctx, oldRefresh.Token, client.ClientID)
		require.ErrorIs(t, err, ErrRefreshExpired)

		// New pair works.
		_, err = tokens.Validate(ctx, newTok.Token)
		require.NoError(t, err)
		_, _, err = svc.Redeem(ctx, newRefresh.Token, client.ClientID)
		require.NoError(t, err)
	})

	t.Run("unknown refresh token", func(t *testing.T) {
		_, _, err := svc.Redeem(ctx, "no-such-token", client.ClientID)
		require.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("wrong client", func(t *testing.T) {
		_, refresh := mint(t, "user-2")

		_, _, err := svc.Redeem(ctx, refresh.Token, other.ClientID)
		require.ErrorIs(t, err, ErrClientMismatch)

		// A rejected redemption leaves the token usable.
		_, _, err = svc.Redeem(ctx, refresh.Token, client.ClientID)
		require.NoError(t, err)
	})

	t.Run("disabled client", func(t *testing.T) {
		_, refresh := mint(t, "user-3")

		clients := &ClientService{Store: st, Scopes: scope.DefaultRegistry()}
		require.NoError(t, clients.UpdateStatus(ctx, client.ClientID, domain.StatusDisabled))
		t.Cleanup(func() {
			require.NoError(t, clients.UpdateStatus(ctx, client.ClientID, domain.StatusTest))
		})

		_, _, err := svc.Redeem(ctx, refresh.Token, client.ClientID)
		require.ErrorIs(t, err, ErrClientDisabled)
	})
}
