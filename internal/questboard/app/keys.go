package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
)

// InitSigningKey generates an ephemeral Ed25519 signing key and returns the
// key set and verifier that trust it. Keys live only in memory, so every
// access token issued before a restart is rejected afterwards and clients
// fall back to their refresh token.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, *jwtx.KeySet, *jwtx.EdDSAVerifier, error) {
	key, err := cryptox.NewSigningKey()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(key.Thumbprint, key.PEM)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	logger.Info("generated ephemeral signing key", "kid", signer.KID(), "issuer", cfg.Issuer)
	logger.Warn("access tokens issued before this start are no longer valid")

	return signer, keys, jwtx.NewVerifierEdDSA(keys, cfg.Issuer), nil
}
