package http

import (
	"net/http"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

type OrganizationsHandler struct {
	OrganizationService *service.OrganizationService
	errors              errorWriter
}

// HandleList lists organizations.
//
//	@Summary	List organizations
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	questsdk.OrganizationList
//	@Failure	401	{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router		/v1/organizations [get].
func (h *OrganizationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.OrganizationService.List(r.Context())
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}

	resp := questsdk.OrganizationList{Organizations: make([]questsdk.Organization, len(orgs))}
	for i, o := range orgs {
		resp.Organizations[i] = toOrganization(o)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one organization.
//
//	@Summary	Get organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"organization id"
//	@Success	200	{object}	questsdk.Organization
//	@Failure	404	{object}	httpx.ErrorBody	"Not found"
//	@Router		/v1/organizations/{id} [get].
func (h *OrganizationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrganizationService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(o))
}

// HandleCreate creates an organization. Organizers only.
//
//	@Summary	Create organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		questsdk.CreateOrganizationRequest	true	"organization"
//	@Success	201		{object}	questsdk.Organization
//	@Failure	400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure	403		{object}	httpx.ErrorBody	"Requires organizer role"
//	@Failure	409		{object}	httpx.ErrorBody	"Name taken"
//	@Router		/v1/organizations [post].
func (h *OrganizationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req questsdk.CreateOrganizationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	o, err := h.OrganizationService.Create(r.Context(), httpx.UserIDFromContext(r.Context()), req.Name, req.Description)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toOrganization(o))
}
