package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// GetByID retrieves a category, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
