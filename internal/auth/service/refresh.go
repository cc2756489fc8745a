package service

import (
	"context"
	"errors"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/policy"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/pkg/slogx"
)

// RefreshService binds refresh tokens to access tokens and rotates the
// pair. Rotation retires the old credentials and mints replacements with
// the same user, client and scope in one transaction, so a crash or a lost
// race never leaves two live access tokens on one refresh lineage.
type RefreshService struct {
	Store  store.Store
	Policy policy.Expiry
	Clock  policy.Clock
}

// Issue binds a new refresh token to the given access token. At most one
// live refresh token may reference an access token; a second binding fails
// with ErrRefreshExists (backed by a partial unique index in the store).
func (s *RefreshService) Issue(ctx context.Context, t domain.AccessToken) (domain.RefreshToken, error) {
	if _, err := s.Store.RefreshTokens().GetActiveRefreshTokenByAccessTokenID(ctx, t.ID); err == nil {
		return domain.RefreshToken{}, ErrRefreshExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.RefreshToken{}, err
	}

	rt, err := newRefreshToken(t, nowFrom(s.Clock))
	if err != nil {
		return domain.RefreshToken{}, err
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.RefreshToken{}, ErrRefreshExists
		}
		return domain.RefreshToken{}, err
	}
	return rt, nil
}

// Redeem rotates a refresh token: the old access token is revoked, the old
// refresh token is permanently expired, and a fresh pair is minted with the
// same user/client/scope.
func (s *RefreshService) Redeem(
	ctx context.Context,
	token, clientID string,
) (domain.AccessToken, domain.RefreshToken, error) {
	client, err := lookupClient(ctx, s.Store, clientID)
	if err != nil {
		return domain.AccessToken{}, domain.RefreshToken{}, err
	}

	now := nowFrom(s.Clock)

	var (
		newToken   domain.AccessToken
		newRefresh domain.RefreshToken
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if rt.Expired {
			return ErrRefreshExpired
		}
		if rt.ClientID != client.ID {
			return ErrClientMismatch
		}

		old, err := tx.AccessTokens().GetAccessTokenByID(ctx, rt.AccessTokenID)
		if err != nil {
			return err
		}

		// Compare-and-expire is the race guard: of two concurrent
		// redemptions only one sees an affected row.
		if err := tx.RefreshTokens().ExpireRefreshToken(ctx, rt.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if err := tx.AccessTokens().SoftDeleteAccessToken(ctx, old.ID); err != nil {
			return err
		}

		newToken, err = newAccessToken(s.Policy, client, old.UserID, old.Scope, old.Type, time.Time{}, now)
		if err != nil {
			return err
		}
		if err := tx.AccessTokens().CreateAccessToken(ctx, newToken); err != nil {
			return err
		}

		newRefresh, err = newRefreshToken(newToken, now)
		if err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRefresh)
	})
	if err != nil {
		return domain.AccessToken{}, domain.RefreshToken{}, err
	}

	slogx.FromContext(ctx).Info("refresh token rotated", "client_id", clientID, "user_id", newToken.UserID)
	return newToken, newRefresh, nil
}
