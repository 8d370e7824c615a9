package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// refreshTokenBytes gives refresh tokens 256 bits of entropy (43 base64url
// characters).
const refreshTokenBytes = 32

// NewRefreshToken returns an opaque refresh token for the client and the
// fingerprint questd stores in its place.
func NewRefreshToken() (token, fingerprint string, err error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("cryptox: read random bytes: %w", err)
	}

	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, FingerprintToken(token), nil
}

// FingerprintToken returns the base64url SHA-256 of token. A presented
// refresh token is looked up by its fingerprint.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
