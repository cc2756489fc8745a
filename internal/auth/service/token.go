package service

import (
	"context"
	"errors"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/policy"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/pkg/cryptox"
	"github.com/openmotive/authd/pkg/idx"
	"github.com/openmotive/authd/pkg/slogx"
)

// TokenService issues, validates and revokes bearer access tokens.
type TokenService struct {
	Store  store.Store
	Policy policy.Expiry
	Clock  policy.Clock
}

// IssueParams describe an access token to mint. A zero Expires defaults to
// the client-type lifetime from the expiry policy.
type IssueParams struct {
	UserID   string // empty for client-credential tokens
	ClientID string // public client identifier
	Scope    scope.Mask
	Type     int
	Expires  time.Time
}

// Issue mints an access token directly (client-credentials style flows).
// Grant-backed issuance goes through ExchangeGrant.
func (s *TokenService) Issue(ctx context.Context, p IssueParams) (domain.AccessToken, error) {
	client, err := lookupClient(ctx, s.Store, p.ClientID)
	if err != nil {
		return domain.AccessToken{}, err
	}
	if !scope.Contains(p.Scope, client.Scope) {
		return domain.AccessToken{}, ErrInvalidScope
	}

	t, err := newAccessToken(s.Policy, client, p.UserID, p.Scope, p.Type, p.Expires, nowFrom(s.Clock))
	if err != nil {
		return domain.AccessToken{}, err
	}
	if err := s.Store.AccessTokens().CreateAccessToken(ctx, t); err != nil {
		return domain.AccessToken{}, err
	}

	slogx.FromContext(ctx).Info("access token issued", "client_id", p.ClientID, "user_id", p.UserID)
	return t, nil
}

// ExchangeGrant redeems an authorization code and mints the access token it
// was approved for, atomically. Confidential clients also receive a refresh
// token; public clients get the longer default lifetime instead since they
// cannot store a refresh secret.
func (s *TokenService) ExchangeGrant(
	ctx context.Context,
	code, clientID, redirectURI string,
) (domain.AccessToken, *domain.RefreshToken, error) {
	client, err := lookupClient(ctx, s.Store, clientID)
	if err != nil {
		return domain.AccessToken{}, nil, err
	}

	now := nowFrom(s.Clock)

	var (
		token   domain.AccessToken
		refresh *domain.RefreshToken
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err := redeemGrant(ctx, tx, client, code, redirectURI, now)
		if err != nil {
			return err
		}

		token, err = newAccessToken(s.Policy, client, g.UserID, g.Scope, domain.TokenTypeBearer, time.Time{}, now)
		if err != nil {
			return err
		}
		if err := tx.AccessTokens().CreateAccessToken(ctx, token); err != nil {
			return err
		}

		if client.Type == domain.ClientConfidential {
			rt, err := newRefreshToken(token, now)
			if err != nil {
				return err
			}
			if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
				return err
			}
			refresh = &rt
		}

		return nil
	})
	if err != nil {
		return domain.AccessToken{}, nil, err
	}

	slogx.FromContext(ctx).Info("grant exchanged for access token",
		"client_id", clientID, "user_id", token.UserID, "refresh", refresh != nil)
	return token, refresh, nil
}

// Validate looks up a live token by its bearer value. Read-only: a valid
// token is returned untouched, an expired one is reported but not revoked.
func (s *TokenService) Validate(ctx context.Context, token string) (domain.AccessToken, error) {
	t, err := s.Store.AccessTokens().GetLiveAccessTokenByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AccessToken{}, ErrTokenNotFound
		}
		return domain.AccessToken{}, err
	}
	if policy.RemainingSeconds(t.Expires, nowFrom(s.Clock)) <= 0 {
		return domain.AccessToken{}, ErrTokenExpired
	}
	return t, nil
}

// Revoke soft-deletes the token matching the bearer value. Idempotent:
// revoking an unknown or already-revoked token succeeds.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	t, err := s.Store.AccessTokens().GetLiveAccessTokenByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.Store.AccessTokens().SoftDeleteAccessToken(ctx, t.ID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("access token revoked", "user_id", t.UserID)
	return nil
}

// ExpireDelta returns the whole seconds until the token expires, measured
// from reference (or the clock's now when reference is zero). Negative or
// zero means invalid. Never mutates state.
func (s *TokenService) ExpireDelta(t domain.AccessToken, reference time.Time) int64 {
	if reference.IsZero() {
		reference = nowFrom(s.Clock)
	}
	return policy.RemainingSeconds(t.Expires, reference)
}

// newAccessToken builds the record, applying the default-expiry policy
// explicitly rather than as a save-time side effect. The schema rejects a
// null expiry, so the default is applied before the row ever exists.
func newAccessToken(
	pol policy.Expiry,
	client domain.Client,
	userID string,
	mask scope.Mask,
	tokenType int,
	expires time.Time,
	now time.Time,
) (domain.AccessToken, error) {
	value, err := cryptox.LongToken()
	if err != nil {
		return domain.AccessToken{}, err
	}
	if expires.IsZero() {
		expires = pol.TokenExpiry(now, client.Type)
	}
	return domain.AccessToken{
		ID:        idx.New().String(),
		UserID:    userID,
		ClientID:  client.ID,
		Token:     value,
		Expires:   expires,
		Scope:     mask,
		Type:      tokenType,
		CreatedAt: now,
	}, nil
}

func newRefreshToken(t domain.AccessToken, now time.Time) (domain.RefreshToken, error) {
	value, err := cryptox.LongToken()
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return domain.RefreshToken{
		ID:            idx.New().String(),
		UserID:        t.UserID,
		ClientID:      t.ClientID,
		AccessTokenID: t.ID,
		Token:         value,
		CreatedAt:     now,
	}, nil
}
