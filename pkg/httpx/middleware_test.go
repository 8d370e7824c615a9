package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/questboard/pkg/cryptox"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokenPair(t *testing.T) (*jwtx.EdDSASigner, jwtx.Verifier) {
	t.Helper()

	key, err := cryptox.NewSigningKey()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", key.PEM)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)
	return signer, jwtx.NewVerifierEdDSA(keys, "questboard")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	signer, verifier := newTokenPair(t)

	var gotUser string
	protected := func(legacy bool) http.Handler {
		return httpx.AuthnMiddleware(verifier, legacy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = httpx.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	}

	t.Run("valid token passes claims through", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims("user-9", "volunteer", "v", "", time.Minute, "questboard", time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected(false).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "user-9", gotUser)
	})

	t.Run("missing token is a 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("legacy mode wraps the 401 in a 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected(true).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body httpx.LegacyErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusUnauthorized, body.StatusCode)
		require.Equal(t, httpx.CodeInvalidToken, body.Error)
	})
}

func TestRequireRole(t *testing.T) {
	signer, verifier := newTokenPair(t)

	h := httpx.Chain(okHandler(),
		httpx.AuthnMiddleware(verifier, false),
		httpx.RequireRole("organizer"),
	)

	call := func(role string) int {
		token, err := signer.Sign(jwtx.NewAccessClaims("u", role, "u", "", time.Minute, "questboard", time.Now()))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("organizer"))
	require.Equal(t, http.StatusForbidden, call("volunteer"))
}
