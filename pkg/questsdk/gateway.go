package questsdk

import (
	"context"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// Gateway sends requests with the stored access token and recovers from an
// expired token by refreshing once and retrying once.
type Gateway struct {
	client *SDKClient
	creds  CredentialStore

	// mu serializes refreshes across concurrent Execute calls.
	mu sync.Mutex
}

func NewGateway(client *SDKClient, creds CredentialStore) *Gateway {
	return &Gateway{client: client, creds: creds}
}

// Client returns the unauthenticated client the Gateway wraps.
func (g *Gateway) Client() *SDKClient { return g.client }

// Credentials returns the store the Gateway reads tokens from.
func (g *Gateway) Credentials() CredentialStore { return g.creds }

// Execute issues req. A 401, as a status or as a 200 body carrying
// "statusCode": 401, triggers one refresh and one retry of req.
//
// Non-401 responses are returned with a nil error whatever their status.
// When the 401 cannot be recovered from, the returned error matches
// ErrUnauthorized and the returned Response is the 401 that ended the call.
// Transport failures return a nil Response.
func (g *Gateway) Execute(ctx context.Context, req Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	token := g.creds.AccessToken(ctx)
	resp, err := g.client.do(ctx, req.Method, req.Path, body, req.Header, token)
	if err != nil {
		return nil, err
	}
	if !resp.Unauthorized() {
		return resp, nil
	}

	log := slogx.FromContext(ctx)
	log.Debug("401 observed", "method", req.Method, "path", req.Path, "status", resp.StatusCode)

	fresh, err := g.refresh(ctx, token)
	if err != nil {
		log.Debug("refresh failed", "error", err)
		return resp, &AuthError{Response: resp, Cause: err}
	}

	log.Debug("retry issued", "method", req.Method, "path", req.Path)
	retry, err := g.client.do(ctx, req.Method, req.Path, body, req.Header, fresh)
	if err != nil {
		return nil, err
	}
	if retry.Unauthorized() {
		return retry, &AuthError{Response: retry}
	}
	return retry, nil
}

// refresh returns an access token to retry with. rejected is the token the
// failed request carried; if another caller has already replaced it, the
// current token is returned without calling the API.
func (g *Gateway) refresh(ctx context.Context, rejected string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	log := slogx.FromContext(ctx)

	if current := g.creds.AccessToken(ctx); current != "" && current != rejected {
		log.Debug("access token already refreshed")
		return current, nil
	}

	refreshToken := g.creds.RefreshToken(ctx)
	if refreshToken == "" {
		g.clear(ctx)
		return "", ErrNoRefreshToken
	}

	log.Debug("refresh started")
	tokens, err := g.client.Refresh(ctx, refreshToken)
	if err != nil {
		g.clear(ctx)
		return "", fmt.Errorf("refresh token: %w", err)
	}

	if err := g.creds.SaveAccessToken(ctx, tokens.AccessToken); err != nil {
		log.Warn("failed to persist access token", "error", err)
	}
	if tokens.RefreshToken != "" {
		if err := g.creds.SaveRefreshToken(ctx, tokens.RefreshToken); err != nil {
			log.Warn("failed to persist refresh token", "error", err)
		}
	}

	log.Debug("refresh succeeded")
	return tokens.AccessToken, nil
}

func (g *Gateway) clear(ctx context.Context) {
	if err := g.creds.Clear(ctx); err != nil {
		slogx.FromContext(ctx).Warn("failed to clear credentials", "error", err)
	}
}
