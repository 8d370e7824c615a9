package http

import (
	"net/http"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

type AuthHandler struct {
	AuthService *service.AuthService
	errors      errorWriter
}

// HandleRegister creates an account.
//
//	@Summary		Register
//	@Description	Creates a volunteer account and returns its first token pair. The first account ever registered becomes an organizer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		questsdk.RegisterRequest	true	"username, password, display name"
//	@Success		201		{object}	questsdk.TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		409		{object}	httpx.ErrorBody	"Username taken"
//	@Failure		429		{object}	httpx.ErrorBody	"Rate limited"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req questsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	pair, err := h.AuthService.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTokenResponse(pair))
}

// HandleLogin exchanges a username and password for tokens.
//
//	@Summary		Login
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		questsdk.LoginRequest	true	"credentials"
//	@Success		200		{object}	questsdk.TokenResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid username or password"
//	@Failure		429		{object}	httpx.ErrorBody	"Rate limited"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req questsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleRefresh rotates a refresh token.
//
//	@Summary		Refresh tokens
//	@Description	Exchanges a refresh token for a new access token and a rotated refresh token. The presented refresh token is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		questsdk.RefreshRequest	true	"refresh token"
//	@Success		200		{object}	questsdk.TokenResponse
//	@Failure		401		{object}	httpx.ErrorBody	"Invalid, expired or revoked refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req questsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
}

// HandleLogout revokes one of the caller's refresh tokens.
//
//	@Summary		Logout
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	questsdk.RefreshRequest	true	"refresh token to revoke"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req questsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), httpx.UserIDFromContext(r.Context()), req.RefreshToken); err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
