package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// EventRepository defines the interface for sales-context persistence
type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	// GetByID retrieves an event, or (nil, nil) if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Event, int64, error)
}
