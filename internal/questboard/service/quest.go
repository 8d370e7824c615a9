package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
	"github.com/aussiebroadwan/questboard/internal/questboard/store"
	"github.com/aussiebroadwan/questboard/pkg/idx"
	"github.com/aussiebroadwan/questboard/pkg/questx"
	"github.com/aussiebroadwan/questboard/pkg/slogx"
)

const maxSteps = 50

type QuestService struct {
	Store store.Store
}

type CreateQuestInput struct {
	OrganizationID string
	Title          string
	Description    string
	Steps          []CreateStepInput
}

type CreateStepInput struct {
	Title       string
	TargetValue float64
}

// Create validates input and stores a new quest with every step at zero.
func (s *QuestService) Create(ctx context.Context, createdBy string, in CreateQuestInput) (domain.Quest, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Quest{}, invalid("title", "is required")
	}
	if len(in.Steps) == 0 {
		return domain.Quest{}, invalid("steps", "at least one step is required")
	}
	if len(in.Steps) > maxSteps {
		return domain.Quest{}, invalid("steps", "too many steps")
	}

	now := time.Now().UTC()
	q := domain.Quest{
		ID:             idx.New(),
		OrganizationID: in.OrganizationID,
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for i, st := range in.Steps {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			return domain.Quest{}, invalid("steps", "every step needs a title")
		}
		if !isFinite(st.TargetValue) || st.TargetValue <= 0 {
			return domain.Quest{}, invalid("steps", "target_value must be a positive number")
		}
		q.Steps = append(q.Steps, domain.Step{
			ID:          idx.New(),
			QuestID:     q.ID,
			Position:    i,
			Title:       title,
			TargetValue: st.TargetValue,
		})
	}

	if !idx.Valid(in.OrganizationID) {
		return domain.Quest{}, invalid("organization_id", "unknown organization")
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Organizations().GetOrganizationByID(ctx, in.OrganizationID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalid("organization_id", "unknown organization")
			}
			return err
		}
		return tx.Quests().CreateQuest(ctx, q)
	})
	if err != nil {
		return domain.Quest{}, err
	}
	return q, nil
}

func (s *QuestService) Get(ctx context.Context, id string) (domain.Quest, error) {
	if !idx.Valid(id) {
		return domain.Quest{}, ErrNotFound
	}
	q, err := s.Store.Quests().GetQuestByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Quest{}, ErrNotFound
	}
	return q, err
}

// List returns quests newest first, optionally for one organization.
func (s *QuestService) List(ctx context.Context, organizationID string) ([]domain.Quest, error) {
	return s.Store.Quests().ListQuests(ctx, organizationID)
}

// Contribute adds amount to a step, clamped to [0, target], recomputes the
// step's stored progress and returns the updated quest.
func (s *QuestService) Contribute(ctx context.Context, questID, stepID string, amount float64) (domain.Quest, error) {
	if !isFinite(amount) || amount == 0 {
		return domain.Quest{}, invalid("amount", "must be a non-zero number")
	}
	if !idx.Valid(questID) || !idx.Valid(stepID) {
		return domain.Quest{}, ErrNotFound
	}

	var q domain.Quest
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		step, err := tx.Quests().GetStep(ctx, questID, stepID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		req := questx.ApplyContribution(step.Requirement(), amount)
		step.CurrentValue = req.CurrentValue
		step.Progress = questx.StepProgress(req)

		if err := tx.Quests().UpdateStepProgress(ctx, step); err != nil {
			return err
		}

		q, err = tx.Quests().GetQuestByID(ctx, questID)
		return err
	})
	if err != nil {
		return domain.Quest{}, err
	}

	slogx.FromContext(ctx).Info("contribution applied",
		"quest_id", questID,
		"step_id", stepID,
		"amount", amount,
		"progress", q.Progress(),
	)
	return q, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
