package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// ProductFilterParams holds filter parameters for listing products
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	EventID    *uuid.UUID
	LowStock   bool
}

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID retrieves a product, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// GetLowStock returns tracked products at or below their alert threshold
	GetLowStock(ctx context.Context) ([]entity.Product, error)
}
