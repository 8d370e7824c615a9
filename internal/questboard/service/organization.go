package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/questboard/internal/questboard/domain"
	"github.com/aussiebroadwan/questboard/internal/questboard/store"
	"github.com/aussiebroadwan/questboard/pkg/idx"
)

type OrganizationService struct {
	Store store.Store
}

func (s *OrganizationService) Create(ctx context.Context, createdBy, name, description string) (domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Organization{}, invalid("name", "is required")
	}

	o := domain.Organization{
		ID:          idx.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Organizations().CreateOrganization(ctx, o); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Organization{}, ErrOrganizationExists
		}
		return domain.Organization{}, err
	}
	return o, nil
}

func (s *OrganizationService) Get(ctx context.Context, id string) (domain.Organization, error) {
	if !idx.Valid(id) {
		return domain.Organization{}, ErrNotFound
	}
	o, err := s.Store.Organizations().GetOrganizationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Organization{}, ErrNotFound
	}
	return o, err
}

func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	return s.Store.Organizations().ListOrganizations(ctx)
}
