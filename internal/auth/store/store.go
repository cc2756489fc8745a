package store

import (
	"context"
	"errors"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. It exposes sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Clients() Clients
	Grants() Grants
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (grant redemption, refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// CreateClient inserts a new client (row id is ULID, credentials are
	// pre-generated by the service).
	CreateClient(ctx context.Context, c domain.Client) error

	// GetClientByClientID fetches a client by its public identifier.
	GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// Every update bumps last_updated_date. They return ErrNotFound when no
	// row matches.
	UpdateClientStatus(ctx context.Context, clientID string, status domain.ClientStatus) error
	UpdateClientScope(ctx context.Context, clientID string, mask scope.Mask) error
	UpdateClientRedirectURI(ctx context.Context, clientID, redirectURI string) error
	UpdateClientSecret(ctx context.Context, clientID, secret string) error
}

type Grants interface {
	// CreateGrant stores a freshly minted authorization code.
	CreateGrant(ctx context.Context, g domain.Grant) error

	// GetGrantByCode fetches a grant by its code value when redeeming.
	GetGrantByCode(ctx context.Context, code string) (domain.Grant, error)

	// DeleteGrant consumes a grant. It returns ErrNotFound when the row no
	// longer exists, which is how a lost redemption race surfaces: run it
	// inside a transaction and treat zero affected rows as already
	// consumed.
	DeleteGrant(ctx context.Context, id string) error

	// DeleteExpiredGrants is housekeeping.
	DeleteExpiredGrants(ctx context.Context, now time.Time) error
}

type AccessTokens interface {
	// CreateAccessToken stores a new access token record. Expires must be
	// set; the schema rejects a null expiry.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetLiveAccessTokenByToken returns the non-deleted token matching the
	// bearer value. Expiry is the caller's check.
	GetLiveAccessTokenByToken(ctx context.Context, token string) (domain.AccessToken, error)

	// GetAccessTokenByID returns the token row regardless of its deleted
	// flag (refresh rotation reads the old token through its binding).
	GetAccessTokenByID(ctx context.Context, id string) (domain.AccessToken, error)

	// SoftDeleteAccessToken flips is_deleted. Idempotent: deleting an
	// already-deleted or absent token is not an error.
	SoftDeleteAccessToken(ctx context.Context, id string) error

	// PurgeDeletedAccessTokens hard-deletes soft-deleted tokens created
	// before the cutoff, once the audit retention window has passed.
	PurgeDeletedAccessTokens(ctx context.Context, before time.Time) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record. A live token
	// already bound to the same access token fails with ErrAlreadyExists.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByToken returns the token by value regardless of the
	// expired flag, so callers can tell "spent" apart from "never existed".
	GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error)

	// GetActiveRefreshTokenByAccessTokenID returns the live token bound to
	// an access token, for the one-to-one check.
	GetActiveRefreshTokenByAccessTokenID(ctx context.Context, accessTokenID string) (domain.RefreshToken, error)

	// ExpireRefreshToken flips expired=true. Returns ErrNotFound when the
	// token was already expired or absent, so concurrent rotations resolve
	// to exactly one winner.
	ExpireRefreshToken(ctx context.Context, id string) error

	// PurgeExpiredRefreshTokens hard-deletes expired-flagged rows created
	// before the cutoff.
	PurgeExpiredRefreshTokens(ctx context.Context, before time.Time) error
}
