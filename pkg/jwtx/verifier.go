package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrUnknownKey  = errors.New("jwtx: unknown signing key")
)

// EdDSAVerifier validates tokens signed by an EdDSASigner.
type EdDSAVerifier struct {
	keys   *KeySet
	parser *jwt.Parser
}

// NewVerifierEdDSA returns a verifier that only accepts EdDSA tokens with
// an expiry. An empty issuer disables the issuer check.
func NewVerifierEdDSA(keys *KeySet, issuer string) *EdDSAVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &EdDSAVerifier{keys: keys, parser: jwt.NewParser(opts...)}
}

func (v *EdDSAVerifier) keyFor(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKey)
	}
	pub, err := v.keys.PublicKey(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownKey, kid, err)
	}
	return pub, nil
}

// Verify checks the signature against the kid's key and the registered
// claims, mapping jwt errors onto the package's sentinels.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := v.parser.ParseWithClaims(tokenStr, &claims, v.keyFor)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return Claims{}, ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return Claims{}, ErrIssuer
	default:
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}

	if !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token")
	}
	return claims, nil
}
