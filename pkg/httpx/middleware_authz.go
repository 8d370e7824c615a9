package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireRole lets the request through only if the caller's role is one of
// roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, roleFromCtx(r.Context())) {
				WriteError(w, http.StatusForbidden, CodeForbidden,
					"requires role: "+strings.Join(roles, " or "))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
