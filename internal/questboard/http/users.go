package http

import (
	"net/http"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
)

type MeHandler struct {
	UserService *service.UserService
	errors      errorWriter
}

// ServeHTTP returns the authenticated user's profile.
//
//	@Summary		Current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	questsdk.Profile
//	@Failure		401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/v1/users/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUserByID(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}
