package domain

import (
	"time"

	"github.com/openmotive/authd/internal/auth/scope"
)

// Grant is a short-lived authorization code that can be swapped for an
// access token exactly once. Redemption deletes the row, so a grant that
// still exists has never been used.
type Grant struct {
	ID          string
	UserID      string
	ClientID    string // row id of the owning Client
	Code        string // long random token, unique
	RedirectURI string // must match the value presented at redemption
	Scope       scope.Mask
	Expires     time.Time
	CreatedAt   time.Time
}
