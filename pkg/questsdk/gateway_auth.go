package questsdk

import (
	"context"
	"fmt"
	"net/http"
)

// Login authenticates and stores the returned token pair.
func (g *Gateway) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	tokens, err := g.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := g.store(ctx, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Register creates an account and stores the returned token pair.
func (g *Gateway) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	tokens, err := g.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := g.store(ctx, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes the stored refresh token on the server, if there is one,
// and clears the Credential Store. Credentials are cleared even when the
// server call fails.
//
// When the access token has expired, the logout call itself triggers a
// refresh that rotates the refresh token it carries. The rotated token is
// then revoked too, so no live session is left behind.
func (g *Gateway) Logout(ctx context.Context) error {
	var callErr error
	sent := ""
	for range 2 {
		refreshToken := g.creds.RefreshToken(ctx)
		if refreshToken == "" || refreshToken == sent {
			break
		}
		sent = refreshToken

		callErr = g.revoke(ctx, refreshToken)
		if callErr != nil {
			break
		}
	}

	if err := g.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return callErr
}

func (g *Gateway) revoke(ctx context.Context, refreshToken string) error {
	resp, err := g.Execute(ctx, Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/logout",
		Body:   RefreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return err
	}
	if resp.EffectiveStatus() != http.StatusNoContent {
		return parseErrorResponse(resp)
	}
	return nil
}

func (g *Gateway) store(ctx context.Context, tokens *TokenResponse) error {
	if err := g.creds.SaveAccessToken(ctx, tokens.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if tokens.RefreshToken != "" {
		if err := g.creds.SaveRefreshToken(ctx, tokens.RefreshToken); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
	}
	return nil
}
