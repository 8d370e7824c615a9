package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

// errorWriter writes error responses. With legacy set, 401s use the
// 200-wrapped {"statusCode": 401} body.
type errorWriter struct {
	legacy bool
}

func (e errorWriter) write(w http.ResponseWriter, status int, code, description string) {
	if e.legacy && status == http.StatusUnauthorized {
		httpx.WriteLegacyError(w, status, code, description)
		return
	}
	httpx.WriteError(w, status, code, description)
}

func (e errorWriter) badBody(w http.ResponseWriter) {
	e.write(w, http.StatusBadRequest, httpx.CodeInvalidRequest, "malformed JSON body")
}

// fromService maps a service error onto its HTTP response.
func (e errorWriter) fromService(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		e.write(w, http.StatusBadRequest, httpx.CodeInvalidRequest, verr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		e.write(w, http.StatusUnauthorized, httpx.CodeInvalidGrant, "invalid username or password")
	case errors.Is(err, service.ErrInvalidRefresh):
		e.write(w, http.StatusUnauthorized, httpx.CodeInvalidGrant, "refresh token is invalid, expired or revoked")
	case errors.Is(err, service.ErrUsernameTaken):
		e.write(w, http.StatusConflict, httpx.CodeConflict, "username is already taken")
	case errors.Is(err, service.ErrOrganizationExists):
		e.write(w, http.StatusConflict, httpx.CodeConflict, "organization name is already taken")
	case errors.Is(err, service.ErrNotFound):
		e.write(w, http.StatusNotFound, httpx.CodeNotFound, "resource not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		e.write(w, http.StatusInternalServerError, httpx.CodeServerError, "internal server error")
	}
}
