package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/questboard/pkg/idx"
)

const (
	// DefaultAccessTokenTTL is short; clients refresh on 401 rather than
	// tracking expiry themselves.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of an opaque refresh token.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Claims are the access-token claims questd issues.
type Claims struct {
	jwt.RegisteredClaims

	// Role is "volunteer" or "organizer".
	Role string `json:"role,omitempty"`

	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// NewAccessClaims builds the claims for a freshly issued access token.
// The jti is a ULID so token ids sort by issue time in logs.
func NewAccessClaims(
	subject, role, username, displayName string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now),
		},
		Role:        role,
		Username:    username,
		DisplayName: displayName,
	}
}
