package domain

import (
	"time"

	"github.com/aussiebroadwan/questboard/pkg/questx"
)

type Quest struct {
	ID             string
	OrganizationID string
	Title          string
	Description    string
	Steps          []Step // ordered by Position
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Step is one requirement of a quest. Progress is stored and must be kept
// equal to questx.StepProgress of the step's requirement.
type Step struct {
	ID           string
	QuestID      string
	Position     int
	Title        string
	CurrentValue float64
	TargetValue  float64
	Progress     int
}

func (s Step) Requirement() questx.Requirement {
	return questx.Requirement{CurrentValue: s.CurrentValue, TargetValue: s.TargetValue}
}

// Progress is the quest's aggregate progress. It is never stored.
func (q Quest) Progress() int {
	steps := make([]questx.Step, len(q.Steps))
	for i, s := range q.Steps {
		steps[i] = questx.Step{Progress: float64(s.Progress)}
	}
	return questx.AggregateProgress(steps)
}
