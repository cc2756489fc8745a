package domain

import (
	"time"

	"github.com/openmotive/authd/internal/auth/scope"
)

// Token varieties stored in the access token's type column.
const (
	TokenTypeBearer = 0
)

// AccessToken is the bearer credential presented to resource servers.
// Tokens are soft-deleted rather than removed so audit history survives
// revocation; a token is live when is_deleted is false and expires is in
// the future.
type AccessToken struct {
	ID        string
	UserID    string // empty for client-credential tokens with no user
	ClientID  string // row id of the owning Client
	Token     string // long random token, indexed for lookup
	Expires   time.Time
	Scope     scope.Mask
	Type      int
	Deleted   bool
	CreatedAt time.Time
}

// RefreshToken rotates an access token. At most one live refresh token
// references a given access token; once Expired flips true the token is
// permanently unusable.
type RefreshToken struct {
	ID            string
	UserID        string
	ClientID      string
	AccessTokenID string
	Token         string // long random token, unique
	Expired       bool
	CreatedAt     time.Time
}
