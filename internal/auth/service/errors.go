package service

import (
	"errors"
	"time"

	"github.com/openmotive/authd/internal/auth/policy"
)

// Every failure the issuance core reports is one of these sentinels. The
// surrounding request layer maps them onto OAuth2 error codes
// (invalid_grant, invalid_scope, invalid_client, ...). None are retried
// here: each reflects a client-visible protocol violation or a legitimate
// one-shot race outcome.
var (
	ErrInvalidClient    = errors.New("invalid_client")
	ErrClientDisabled   = errors.New("client_disabled")
	ErrClientMismatch   = errors.New("client_mismatch")
	ErrInvalidScope     = errors.New("invalid_scope")
	ErrInvalidRedirect  = errors.New("invalid_redirect_uri")
	ErrRedirectMismatch = errors.New("redirect_uri_mismatch")
	ErrGrantNotFound    = errors.New("grant_not_found")
	ErrGrantExpired     = errors.New("grant_expired")
	ErrTokenNotFound    = errors.New("token_not_found")
	ErrTokenExpired     = errors.New("token_expired")
	ErrRefreshExpired   = errors.New("refresh_token_expired")
	ErrRefreshExists    = errors.New("refresh_token_exists")
)

func nowFrom(c policy.Clock) time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c.Now()
}
