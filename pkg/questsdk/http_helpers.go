package questsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// do sends one request. The bearer header is set only when token is
// non-empty; an empty token means the call goes out unauthenticated.
func (c *SDKClient) do(
	ctx context.Context,
	method, path string,
	body []byte,
	header http.Header,
	token string,
) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := slogx.RequestIDFromContext(ctx); reqID != "" {
		req.Header.Set(slogx.RequestIDHeader, reqID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// encodeBody marshals a request body once so retries send identical bytes.
func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

// EffectiveStatus is the status the API meant. A 200 whose JSON object body
// carries a numeric "statusCode" reports that code instead.
func (r *Response) EffectiveStatus() int {
	if r.StatusCode != http.StatusOK {
		return r.StatusCode
	}
	if embedded := embeddedStatus(r.Body); embedded != 0 {
		return embedded
	}
	return r.StatusCode
}

// Unauthorized reports whether the response is a 401 in either shape.
func (r *Response) Unauthorized() bool {
	return r.EffectiveStatus() == http.StatusUnauthorized
}

func embeddedStatus(body []byte) int {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return 0
	}

	var envelope struct {
		StatusCode *int `json:"statusCode"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.StatusCode == nil {
		return 0
	}
	return *envelope.StatusCode
}

// decode unmarshals a successful response into target, or returns the
// typed error for anything other than expectedStatus.
func (r *Response) decode(target any, expectedStatus int) error {
	if r.EffectiveStatus() != expectedStatus {
		return parseErrorResponse(r)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
