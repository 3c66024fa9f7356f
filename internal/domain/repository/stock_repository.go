package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// StockRepository is the persistence side of the stock ledger. Every call
// appends exactly one movement row and updates the product's cached quantity
// in the same transaction; the movement's QuantityBefore/QuantityAfter fields
// are filled in from the state observed inside that transaction.
type StockRepository interface {
	// Reserve applies the movement's negative delta with a single conditional
	// decrement ("quantity >= n"). It returns ok=false when stock is
	// insufficient; no row is written in that case.
	Reserve(ctx context.Context, movement *entity.StockMovement) (ok bool, err error)
	// Release applies the movement's positive delta. It always succeeds;
	// clamped=true signals the cached quantity was negative beforehand and
	// was clamped to zero, which indicates a prior inconsistency.
	Release(ctx context.Context, movement *entity.StockMovement) (clamped bool, err error)
	// Adjust applies a delta of either sign. Negative deltas use the same
	// conditional decrement as Reserve and report ok=false on insufficient
	// stock.
	Adjust(ctx context.Context, movement *entity.StockMovement) (ok bool, err error)
	// ListMovements returns the movement history of a product, newest first
	ListMovements(ctx context.Context, productID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error)
}
