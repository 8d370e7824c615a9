package questsdk

import (
	"context"
	"net/http"
	"net/url"
)

// executeJSON runs req through the Gateway and decodes the expected answer.
func executeJSON[T any](ctx context.Context, g *Gateway, req Request, expected int) (*T, error) {
	resp, err := g.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var out T
	if err := resp.decode(&out, expected); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the authenticated user.
func (g *Gateway) Me(ctx context.Context) (*Profile, error) {
	return executeJSON[Profile](ctx, g, Request{Method: http.MethodGet, Path: "/v1/users/me"}, http.StatusOK)
}

// ============================================================================
// Quests
// ============================================================================

// ListQuests returns every quest, optionally narrowed to one organization.
func (g *Gateway) ListQuests(ctx context.Context, organizationID string) ([]Quest, error) {
	path := "/v1/quests"
	if organizationID != "" {
		path += "?organization_id=" + url.QueryEscape(organizationID)
	}

	list, err := executeJSON[QuestList](ctx, g, Request{Method: http.MethodGet, Path: path}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return list.Quests, nil
}

func (g *Gateway) GetQuest(ctx context.Context, id string) (*Quest, error) {
	return executeJSON[Quest](ctx, g, Request{
		Method: http.MethodGet,
		Path:   "/v1/quests/" + url.PathEscape(id),
	}, http.StatusOK)
}

func (g *Gateway) CreateQuest(ctx context.Context, req CreateQuestRequest) (*Quest, error) {
	return executeJSON[Quest](ctx, g, Request{
		Method: http.MethodPost,
		Path:   "/v1/quests",
		Body:   req,
	}, http.StatusCreated)
}

// Contribute adds amount to a quest step and returns the updated quest.
func (g *Gateway) Contribute(ctx context.Context, questID, stepID string, amount float64) (*Quest, error) {
	return executeJSON[Quest](ctx, g, Request{
		Method: http.MethodPost,
		Path:   "/v1/quests/" + url.PathEscape(questID) + "/steps/" + url.PathEscape(stepID) + "/contributions",
		Body:   ContributionRequest{Amount: amount},
	}, http.StatusOK)
}

// ============================================================================
// Organizations
// ============================================================================

func (g *Gateway) ListOrganizations(ctx context.Context) ([]Organization, error) {
	list, err := executeJSON[OrganizationList](ctx, g, Request{Method: http.MethodGet, Path: "/v1/organizations"}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return list.Organizations, nil
}

func (g *Gateway) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	return executeJSON[Organization](ctx, g, Request{
		Method: http.MethodGet,
		Path:   "/v1/organizations/" + url.PathEscape(id),
	}, http.StatusOK)
}

func (g *Gateway) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*Organization, error) {
	return executeJSON[Organization](ctx, g, Request{
		Method: http.MethodPost,
		Path:   "/v1/organizations",
		Body:   req,
	}, http.StatusCreated)
}
