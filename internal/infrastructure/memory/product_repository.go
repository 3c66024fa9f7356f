// Package memory holds in-memory repository implementations used by the
// service tests. They honor the same contracts as the gorm repositories,
// including the conditional stock decrement and order version guard.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(product), nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []entity.Product
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			products = append(products, *cloneProduct(product))
		}
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *ProductRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []entity.Product
	for _, product := range r.products {
		if params.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(params.Search)) {
			continue
		}
		if params.CategoryID != nil && (product.CategoryID == nil || *product.CategoryID != *params.CategoryID) {
			continue
		}
		if params.EventID != nil && product.EventID != nil && *product.EventID != *params.EventID {
			continue
		}
		if params.LowStock && !(product.TracksInventory && product.Quantity <= product.QuantityAlert) {
			continue
		}
		products = append(products, *cloneProduct(product))
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})
	return products, int64(len(products)), nil
}

func (r *ProductRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []entity.Product
	for _, product := range r.products {
		if product.TracksInventory && product.Quantity <= product.QuantityAlert {
			products = append(products, *cloneProduct(product))
		}
	}
	return products, nil
}

func cloneProduct(product *entity.Product) *entity.Product {
	if product == nil {
		return nil
	}
	clone := *product
	clone.Modifiers = append(entity.ModifierList(nil), product.Modifiers...)
	return &clone
}
