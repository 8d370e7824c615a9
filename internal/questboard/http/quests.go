package http

import (
	"net/http"

	"github.com/aussiebroadwan/questboard/internal/questboard/service"
	"github.com/aussiebroadwan/questboard/pkg/httpx"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
)

type QuestsHandler struct {
	QuestService *service.QuestService
	errors       errorWriter
}

// HandleList lists quests.
//
//	@Summary		List quests
//	@Description	Lists quests newest first, optionally for one organization. Each quest carries its aggregate progress and colour band.
//	@Tags			Quests
//	@Security		BearerAuth
//	@Produce		json
//	@Param			organization_id	query		string	false	"only quests of this organization"
//	@Success		200				{object}	questsdk.QuestList
//	@Failure		401				{object}	httpx.ErrorBody	"Invalid or missing access token"
//	@Router			/v1/quests [get].
func (h *QuestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	quests, err := h.QuestService.List(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}

	resp := questsdk.QuestList{Quests: make([]questsdk.Quest, len(quests))}
	for i, q := range quests {
		resp.Quests[i] = toQuest(q)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one quest.
//
//	@Summary	Get quest
//	@Tags		Quests
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"quest id"
//	@Success	200	{object}	questsdk.Quest
//	@Failure	404	{object}	httpx.ErrorBody	"Not found"
//	@Router		/v1/quests/{id} [get].
func (h *QuestsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q, err := h.QuestService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuest(q))
}

// HandleCreate creates a quest. Organizers only.
//
//	@Summary	Create quest
//	@Tags		Quests
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		questsdk.CreateQuestRequest	true	"quest and its steps"
//	@Success	201		{object}	questsdk.Quest
//	@Failure	400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure	403		{object}	httpx.ErrorBody	"Requires organizer role"
//	@Router		/v1/quests [post].
func (h *QuestsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req questsdk.CreateQuestRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	in := service.CreateQuestInput{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Steps:          make([]service.CreateStepInput, len(req.Steps)),
	}
	for i, s := range req.Steps {
		in.Steps[i] = service.CreateStepInput{Title: s.Title, TargetValue: s.TargetValue}
	}

	q, err := h.QuestService.Create(r.Context(), httpx.UserIDFromContext(r.Context()), in)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toQuest(q))
}

// HandleContribute adds an amount to one step.
//
//	@Summary		Contribute to a step
//	@Description	Adds amount to the step's current value, clamped between zero and the target. Negative amounts withdraw. Returns the updated quest.
//	@Tags			Quests
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"quest id"
//	@Param			stepID	path		string							true	"step id"
//	@Param			request	body		questsdk.ContributionRequest	true	"amount"
//	@Success		200		{object}	questsdk.Quest
//	@Failure		400		{object}	httpx.ErrorBody	"Validation failed"
//	@Failure		404		{object}	httpx.ErrorBody	"Quest or step not found"
//	@Router			/v1/quests/{id}/steps/{stepID}/contributions [post].
func (h *QuestsHandler) HandleContribute(w http.ResponseWriter, r *http.Request) {
	var req questsdk.ContributionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.errors.badBody(w)
		return
	}

	q, err := h.QuestService.Contribute(r.Context(), r.PathValue("id"), r.PathValue("stepID"), req.Amount)
	if err != nil {
		h.errors.fromService(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toQuest(q))
}
