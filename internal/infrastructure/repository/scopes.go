package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// OrganizationIDKey is the context key for the acting organization
	OrganizationIDKey ctxKey = "organization_id"
)

// OrganizationScope returns a GORM scope that filters by the acting
// organization. It is applied to every query on organization-scoped entities.
func OrganizationScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		organizationID, ok := ctx.Value(OrganizationIDKey).(uuid.UUID)
		if !ok {
			// Fail-safe: return no results if organization context is
			// missing. This prevents accidental cross-tenant data access.
			return db.Where("1 = 0")
		}
		return db.Where("organization_id = ?", organizationID)
	}
}

// WithOrganization adds the organization ID to the context
func WithOrganization(ctx context.Context, organizationID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrganizationIDKey, organizationID)
}

// GetOrganizationID extracts the organization ID from the context
func GetOrganizationID(ctx context.Context) (uuid.UUID, bool) {
	organizationID, ok := ctx.Value(OrganizationIDKey).(uuid.UUID)
	return organizationID, ok
}
