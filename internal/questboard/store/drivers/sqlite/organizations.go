package sqlite

import (
	"context"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
)

type organizationsRepo struct {
	db DBTX
}

const organizationColumns = `id, name, description, created_by, created_at`

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO organizations (id, name, description, created_by, created_at)
VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Description, o.CreatedBy, toMillis(o.CreatedAt),
	)
	return mapConflict(err)
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = ?`, id)
	return scanOrganization(row)
}

func (r *organizationsRepo) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []domain.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func scanOrganization(row rowScanner) (domain.Organization, error) {
	var (
		o         domain.Organization
		createdAt int64
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedBy, &createdAt); err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	o.CreatedAt = fromMillis(createdAt)
	return o, nil
}
