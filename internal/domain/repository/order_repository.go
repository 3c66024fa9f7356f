package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// OrderFilterParams holds filter parameters for listing orders
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Status        *enum.OrderStatus
	PaymentStatus *enum.PaymentStatus
	Source        *enum.OrderSource
	EventID       *uuid.UUID
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
}

// OrderRepository defines the interface for order persistence. All reads are
// organization-scoped through the request context.
type OrderRepository interface {
	// Create persists an order together with its items in one transaction
	Create(ctx context.Context, order *entity.Order) error
	// GetByID retrieves an order with its items, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// List returns orders matching the filter plus the total count
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// Update persists the order and its items in one transaction guarded by
	// the order's version; it returns apperror.ErrConflict when another
	// mutation won the race.
	Update(ctx context.Context, order *entity.Order) error
}
