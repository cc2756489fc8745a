package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// ShortTokenSize yields 128 bits of entropy (22 chars base64url).
	// Sized for public identifiers that show up in URLs.
	ShortTokenSize = 16
	// LongTokenSize yields 256 bits of entropy (43 chars base64url).
	// Sized for secrets and bearer credentials.
	LongTokenSize = 32
)

// GenerateToken creates a cryptographically secure random token of the
// specified byte length, returned as base64url without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken is like GenerateToken but panics on error. Use only
// during initialization where failure is unrecoverable.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate token: %v", err))
	}
	return token
}

// ShortToken returns a low-collision random string usable as a public
// application identifier.
func ShortToken() (string, error) {
	return GenerateToken(ShortTokenSize)
}

// LongToken returns a high-entropy random string usable as a secret, grant
// code or bearer token.
func LongToken() (string, error) {
	return GenerateToken(LongTokenSize)
}
