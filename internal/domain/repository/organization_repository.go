package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
)

// OrganizationRepository defines the interface for tenant persistence.
// Lookups here are deliberately unscoped; they are what establishes the
// organization context in the first place.
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	// GetByID retrieves an organization, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error)
	// GetBySlug retrieves an organization by slug, or (nil, nil) if absent
	GetBySlug(ctx context.Context, slug string) (*entity.Organization, error)
}
