package questsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Questboard API. It performs unauthenticated
// operations; wrap it in a Gateway for everything else.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10 second timeout. The timeout
// applies to each call a Gateway makes, refresh and retry included.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns its first token pair.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/register", req, http.StatusCreated)
}

// Login exchanges a username and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, http.StatusOK)
}

// Refresh exchanges a refresh token for a new access token, and usually a
// rotated refresh token. A response without an access token is an error.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	tokens, err := c.requestToken(ctx, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return tokens, nil
}

// Health calls the liveness endpoint.
func (c *SDKClient) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/livez", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := resp.decode(&health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *SDKClient) requestToken(ctx context.Context, path string, body any, expected int) (*TokenResponse, error) {
	data, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, path, data, nil, "")
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if err := resp.decode(&tokens, expected); err != nil {
		return nil, err
	}
	return &tokens, nil
}
