package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// StockRepository operates on the quantities held by a ProductRepository so
// tests observe the same product state the services read.
type StockRepository struct {
	mu        sync.Mutex
	products  *ProductRepository
	movements []entity.StockMovement
}

func NewStockRepository(products *ProductRepository) *StockRepository {
	return &StockRepository{products: products}
}

func (r *StockRepository) Reserve(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	_ = ctx
	qty := -movement.Quantity
	if qty <= 0 {
		return false, errors.New("reserve requires a negative movement quantity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	product, ok := r.products.products[movement.ProductID]
	if !ok {
		return false, errors.New("product not found")
	}
	if product.Quantity < qty {
		return false, nil
	}

	movement.QuantityBefore = product.Quantity
	product.Quantity -= qty
	movement.QuantityAfter = product.Quantity
	r.append(movement)
	return true, nil
}

func (r *StockRepository) Release(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	_ = ctx
	if movement.Quantity <= 0 {
		return false, errors.New("release requires a positive movement quantity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	product, ok := r.products.products[movement.ProductID]
	if !ok {
		return false, errors.New("product not found")
	}

	before := product.Quantity
	base := before
	clamped := false
	if base < 0 {
		base = 0
		clamped = true
	}
	product.Quantity = base + movement.Quantity

	movement.QuantityBefore = before
	movement.QuantityAfter = product.Quantity
	r.append(movement)
	return clamped, nil
}

func (r *StockRepository) Adjust(ctx context.Context, movement *entity.StockMovement) (bool, error) {
	if movement.Quantity < 0 {
		return r.Reserve(ctx, movement)
	}
	if movement.Quantity == 0 {
		return false, errors.New("adjust requires a non-zero movement quantity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products.mu.Lock()
	defer r.products.mu.Unlock()

	product, ok := r.products.products[movement.ProductID]
	if !ok {
		return false, errors.New("product not found")
	}

	movement.QuantityBefore = product.Quantity
	product.Quantity += movement.Quantity
	movement.QuantityAfter = product.Quantity
	r.append(movement)
	return true, nil
}

func (r *StockRepository) ListMovements(ctx context.Context, productID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []entity.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			all = append(all, r.movements[i])
		}
	}

	total := int64(len(all))
	params.Validate()
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// Movements returns every recorded movement, oldest first
func (r *StockRepository) Movements() []entity.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.StockMovement(nil), r.movements...)
}

func (r *StockRepository) append(movement *entity.StockMovement) {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	r.movements = append(r.movements, *movement)
}
