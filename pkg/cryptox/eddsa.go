package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// SigningKey is a questd access-token key.
type SigningKey struct {
	// PEM is the PKCS8 encoded private key.
	PEM []byte

	// Thumbprint is the first 16 base64url characters of the SHA-256 of
	// the raw public key. questd uses it as the JWT kid.
	Thumbprint string
}

func NewSigningKey() (SigningKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SigningKey{}, fmt.Errorf("cryptox: generate ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return SigningKey{}, fmt.Errorf("cryptox: marshal pkcs8 key: %w", err)
	}

	sum := sha256.Sum256(pub)
	return SigningKey{
		PEM:        pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}),
		Thumbprint: base64.RawURLEncoding.EncodeToString(sum[:])[:16],
	}, nil
}
