package questboard_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

// TestRateLimitLogin verifies that credential guessing on /v1/auth/login is
// throttled per client IP.
func TestRateLimitLogin(t *testing.T) {
	baseURL := setupContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS": "3",
		"RATELIMIT_STRICT_BURST":    "3",
	})
	client := questsdk.NewSDKClient(baseURL)

	for i := range 3 {
		_, err := client.Login(t.Context(), "nobody", "wrong-password")
		var apiErr *questsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode, "request %d should fail authentication, not the limiter", i+1)
	}

	_, err := client.Login(t.Context(), "nobody", "wrong-password")
	var apiErr *questsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
