package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
)

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[uuid.UUID]*entity.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[uuid.UUID]*entity.Category)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	clone := *category
	return &clone, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]entity.Category, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var categories []entity.Category
	for _, category := range r.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.categories, id)
	return nil
}
