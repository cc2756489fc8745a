// Package policy computes grant and token lifetimes.
package policy

import (
	"math"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
)

// Default lifetimes. Grant codes stay short to limit replay exposure.
// Public clients get the long lifetime since they cannot securely store a
// refresh secret; confidential clients get the short one backed by refresh
// rotation.
const (
	DefaultCodeLifetime         = 10 * time.Minute
	DefaultConfidentialLifetime = 7 * 24 * time.Hour
	DefaultPublicLifetime       = 30 * 24 * time.Hour
)

// Expiry computes expiry timestamps for grants and access tokens. The zero
// value uses the defaults above.
type Expiry struct {
	CodeLifetime         time.Duration
	ConfidentialLifetime time.Duration
	PublicLifetime       time.Duration
}

// CodeExpiry returns the expiry timestamp for a grant code issued at now.
func (e Expiry) CodeExpiry(now time.Time) time.Time {
	ttl := e.CodeLifetime
	if ttl <= 0 {
		ttl = DefaultCodeLifetime
	}
	return now.Add(ttl)
}

// TokenExpiry returns the default expiry timestamp for an access token
// issued at now to a client of the given type.
func (e Expiry) TokenExpiry(now time.Time, t domain.ClientType) time.Time {
	ttl := e.ConfidentialLifetime
	if ttl <= 0 {
		ttl = DefaultConfidentialLifetime
	}
	if t == domain.ClientPublic {
		ttl = e.PublicLifetime
		if ttl <= 0 {
			ttl = DefaultPublicLifetime
		}
	}
	return now.Add(ttl)
}

// RemainingSeconds returns the whole seconds until expires, measured from
// reference. Negative once expired; callers must treat <= 0 as invalid.
//
// The store persists UTC timestamps, so both operands are normalised to UTC
// before subtracting. The result is floored to whole seconds, never rounded
// up: a token 0.5s from expiry reports 0 remaining.
func RemainingSeconds(expires, reference time.Time) int64 {
	d := expires.UTC().Sub(reference.UTC())
	return int64(math.Floor(d.Seconds()))
}
