package questsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches every terminal authentication failure
	// returned by the Gateway.
	ErrUnauthorized = errors.New("questsdk: unauthorized")

	// ErrNoRefreshToken means a 401 arrived with nothing to refresh with.
	ErrNoRefreshToken = errors.New("questsdk: no refresh token stored")

	// ErrMissingAccessToken means the refresh endpoint answered without a
	// new access token.
	ErrMissingAccessToken = errors.New("questsdk: refresh response has no access token")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("questsdk: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// AuthError is returned by Gateway.Execute when a 401 could not be
// recovered from. Response is the 401 that ends the call: the original one
// when refreshing was impossible or failed, the retry's when the retry was
// rejected too.
type AuthError struct {
	Response *Response

	// Cause is why the refresh did not happen or failed. It is nil when the
	// refresh worked but the retried request was still rejected.
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("questsdk: unauthorized: %v", e.Cause)
	}
	return "questsdk: unauthorized after token refresh"
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }
func (e *AuthError) Unwrap() error        { return e.Cause }

// parseErrorResponse builds an *APIError from an error response. Both the
// {"error","error_description"} and the {"statusCode","message"} bodies are
// understood.
func parseErrorResponse(resp *Response) error {
	status := resp.EffectiveStatus()

	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && (body.Error != "" || body.Message != "") {
		msg := body.ErrorDescription
		if msg == "" {
			msg = body.Message
		}
		return &APIError{StatusCode: status, Code: body.Error, Message: msg}
	}

	return &APIError{
		StatusCode: status,
		Code:       "http_error",
		Message:    fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}
