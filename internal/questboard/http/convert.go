package http

import (
	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
	"github.com/aussiebroadwan/questboard/pkg/questsdk"
	"github.com/aussiebroadwan/questboard/pkg/questx"
)

func toTokenResponse(p *domain.TokenPair) questsdk.TokenResponse {
	return questsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}

func toProfile(u domain.User) questsdk.Profile {
	return questsdk.Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

func toOrganization(o domain.Organization) questsdk.Organization {
	return questsdk.Organization{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
	}
}

// toQuest derives each step's kind and the aggregate progress and colour
// on the way out; none of them are stored.
func toQuest(q domain.Quest) questsdk.Quest {
	steps := make([]questsdk.QuestStep, len(q.Steps))
	for i, s := range q.Steps {
		steps[i] = questsdk.QuestStep{
			ID:           s.ID,
			Title:        s.Title,
			Kind:         s.Requirement().Kind(),
			CurrentValue: s.CurrentValue,
			TargetValue:  s.TargetValue,
			Progress:     s.Progress,
		}
	}

	progress := q.Progress()
	return questsdk.Quest{
		ID:             q.ID,
		OrganizationID: q.OrganizationID,
		Title:          q.Title,
		Description:    q.Description,
		Steps:          steps,
		Progress:       progress,
		Color:          questx.ProgressColor(progress),
		CreatedAt:      q.CreatedAt,
	}
}
