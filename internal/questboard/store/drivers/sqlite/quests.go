package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
)

type questsRepo struct {
	db DBTX
}

const (
	questColumns = `id, organization_id, title, description, created_by, created_at, updated_at`
	stepColumns  = `id, quest_id, position, title, current_value, target_value, progress`
)

// CreateQuest inserts the quest row and its steps. Callers wanting
// atomicity run it inside a transaction.
func (r *questsRepo) CreateQuest(ctx context.Context, q domain.Quest) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO quests (id, organization_id, title, description, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.OrganizationID, q.Title, q.Description, q.CreatedBy,
		toMillis(q.CreatedAt), toMillis(q.UpdatedAt),
	)
	if err != nil {
		return mapConflict(err)
	}

	for _, s := range q.Steps {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO quest_steps (id, quest_id, position, title, current_value, target_value, progress)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, q.ID, s.Position, s.Title, s.CurrentValue, s.TargetValue, s.Progress,
		)
		if err != nil {
			return mapConflict(err)
		}
	}
	return nil
}

func (r *questsRepo) GetQuestByID(ctx context.Context, id string) (domain.Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	q, err := scanQuest(row)
	if err != nil {
		return domain.Quest{}, err
	}

	steps, err := r.listSteps(ctx, []string{q.ID})
	if err != nil {
		return domain.Quest{}, err
	}
	q.Steps = steps[q.ID]
	return q, nil
}

func (r *questsRepo) ListQuests(ctx context.Context, organizationID string) ([]domain.Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests`
	var args []any
	if organizationID != "" {
		query += ` WHERE organization_id = ?`
		args = append(args, organizationID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	quests := []domain.Quest{}
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Release the connection before loading steps.
	_ = rows.Close()

	if len(quests) == 0 {
		return quests, nil
	}

	ids := make([]string, len(quests))
	for i, q := range quests {
		ids[i] = q.ID
	}
	steps, err := r.listSteps(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range quests {
		quests[i].Steps = steps[quests[i].ID]
	}
	return quests, nil
}

func (r *questsRepo) GetStep(ctx context.Context, questID, stepID string) (domain.Step, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM quest_steps WHERE quest_id = ? AND id = ?`,
		questID, stepID,
	)
	return scanStep(row)
}

func (r *questsRepo) UpdateStepProgress(ctx context.Context, s domain.Step) error {
	err := mapAffected(r.db.ExecContext(ctx,
		`UPDATE quest_steps SET current_value = ?, progress = ? WHERE id = ? AND quest_id = ?`,
		s.CurrentValue, s.Progress, s.ID, s.QuestID,
	))
	if err != nil {
		return err
	}

	return mapAffected(r.db.ExecContext(ctx,
		`UPDATE quests SET updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), s.QuestID,
	))
}

// listSteps loads the steps of every quest in ids, grouped by quest id.
func (r *questsRepo) listSteps(ctx context.Context, ids []string) (map[string][]domain.Step, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM quest_steps WHERE quest_id IN (`+placeholders+`) ORDER BY quest_id, position`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Step, len(ids))
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out[s.QuestID] = append(out[s.QuestID], s)
	}
	return out, rows.Err()
}

func scanQuest(row rowScanner) (domain.Quest, error) {
	var (
		q                    domain.Quest
		createdAt, updatedAt int64
	)
	err := row.Scan(&q.ID, &q.OrganizationID, &q.Title, &q.Description, &q.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return domain.Quest{}, mapNotFound(err)
	}
	q.CreatedAt = fromMillis(createdAt)
	q.UpdatedAt = fromMillis(updatedAt)
	return q, nil
}

func scanStep(row rowScanner) (domain.Step, error) {
	var s domain.Step
	err := row.Scan(&s.ID, &s.QuestID, &s.Position, &s.Title, &s.CurrentValue, &s.TargetValue, &s.Progress)
	if err != nil {
		return domain.Step{}, mapNotFound(err)
	}
	return s, nil
}
