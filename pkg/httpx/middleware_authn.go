package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/questboard/pkg/jwtx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token. With legacy set,
// rejections are reported as HTTP 200 carrying {"statusCode":401}, the
// shape older deployments of the API used.
func AuthnMiddleware(v jwtx.Verifier, legacy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, legacy, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Debug("jwt verify failed", "err", err)
				writeBearerError(w, legacy, "the access token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

func writeBearerError(w http.ResponseWriter, legacy bool, desc string) {
	if legacy {
		WriteLegacyError(w, http.StatusUnauthorized, CodeInvalidToken, desc)
		return
	}
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, CodeInvalidToken, desc)
}
