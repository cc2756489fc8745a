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

// GrantService issues and redeems authorization codes per RFC 6749
// section 4.1. A grant is single-use: redemption deletes the row inside a
// transaction, so two concurrent redemptions resolve to one winner.
type GrantService struct {
	Store  store.Store
	Policy policy.Expiry
	Clock  policy.Clock
}

// Issue mints a short-lived authorization code for a user's approval of a
// client request.
func (s *GrantService) Issue(
	ctx context.Context,
	userID, clientID string,
	requested scope.Mask,
	redirectURI string,
) (domain.Grant, error) {
	l := slogx.FromContext(ctx)

	client, err := lookupClient(ctx, s.Store, clientID)
	if err != nil {
		return domain.Grant{}, err
	}
	if !scope.Contains(requested, client.Scope) {
		return domain.Grant{}, ErrInvalidScope
	}
	if redirectURI != client.RedirectURI {
		return domain.Grant{}, ErrRedirectMismatch
	}

	code, err := cryptox.LongToken()
	if err != nil {
		return domain.Grant{}, err
	}

	now := nowFrom(s.Clock)
	g := domain.Grant{
		ID:          idx.New().String(),
		UserID:      userID,
		ClientID:    client.ID,
		Code:        code,
		RedirectURI: redirectURI,
		Scope:       requested,
		Expires:     s.Policy.CodeExpiry(now),
		CreatedAt:   now,
	}

	if err := s.Store.Grants().CreateGrant(ctx, g); err != nil {
		l.Error("failed to create grant", "error", err, "client_id", clientID)
		return domain.Grant{}, err
	}

	l.Info("grant issued", "client_id", clientID, "user_id", userID)
	return g, nil
}

// Redeem consumes an authorization code and returns the grant it carried.
// Most callers want TokenService.ExchangeGrant, which redeems and mints the
// token pair in one transaction.
func (s *GrantService) Redeem(ctx context.Context, code, clientID, redirectURI string) (domain.Grant, error) {
	client, err := lookupClient(ctx, s.Store, clientID)
	if err != nil {
		return domain.Grant{}, err
	}

	var g domain.Grant
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		g, err = redeemGrant(ctx, tx, client, code, redirectURI, nowFrom(s.Clock))
		return err
	})
	if err != nil {
		return domain.Grant{}, err
	}

	slogx.FromContext(ctx).Info("grant redeemed", "client_id", clientID, "user_id", g.UserID)
	return g, nil
}

// lookupClient resolves a public client identifier and enforces the
// disabled check shared by every issuance path.
func lookupClient(ctx context.Context, s store.Store, clientID string) (domain.Client, error) {
	client, err := s.Clients().GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	if client.Status == domain.StatusDisabled {
		return domain.Client{}, ErrClientDisabled
	}
	return client, nil
}

// redeemGrant validates and consumes a code within tx. The delete's
// affected-row count is the single-use guarantee: a lost race reports
// ErrGrantNotFound, indistinguishable from a code that never existed.
func redeemGrant(
	ctx context.Context,
	tx store.Tx,
	client domain.Client,
	code, redirectURI string,
	now time.Time,
) (domain.Grant, error) {
	g, err := tx.Grants().GetGrantByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Grant{}, ErrGrantNotFound
		}
		return domain.Grant{}, err
	}

	if g.ClientID != client.ID {
		return domain.Grant{}, ErrClientMismatch
	}
	if g.RedirectURI != redirectURI {
		return domain.Grant{}, ErrRedirectMismatch
	}
	if !g.Expires.After(now) {
		return domain.Grant{}, ErrGrantExpired
	}

	if err := tx.Grants().DeleteGrant(ctx, g.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Grant{}, ErrGrantNotFound
		}
		return domain.Grant{}, err
	}

	return g, nil
}
