package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	domainRepo "github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

type OrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]*entity.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Version == 0 {
		order.Version = 1
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (r *OrderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []entity.Order
	for _, order := range r.orders {
		if params.Status != nil && order.Status != *params.Status {
			continue
		}
		if params.PaymentStatus != nil && order.PaymentStatus != *params.PaymentStatus {
			continue
		}
		if params.Source != nil && order.Source != *params.Source {
			continue
		}
		if params.EventID != nil && order.EventID != *params.EventID {
			continue
		}
		if params.Search != "" && !strings.Contains(order.OrderNumber, params.Search) {
			continue
		}
		orders = append(orders, *cloneOrder(order))
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, int64(len(orders)), nil
}

// Update applies the same version guard as the database implementation: the
// stored order must still carry the version the caller read.
func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updateLocked(order)
}

func (r *OrderRepository) updateLocked(order *entity.Order) error {
	stored, ok := r.orders[order.ID]
	if !ok {
		return apperror.ErrNotFound
	}
	if stored.Version != order.Version {
		return apperror.ErrConflict
	}

	order.Version++
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func cloneOrder(order *entity.Order) *entity.Order {
	if order == nil {
		return nil
	}
	clone := *order
	clone.Items = append([]entity.OrderItem(nil), order.Items...)
	for i := range clone.Items {
		clone.Items[i].Options = append(entity.StringList(nil), clone.Items[i].Options...)
	}
	return &clone
}
