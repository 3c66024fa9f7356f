package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// PaymentRepository captures payments against the orders held by an
// OrderRepository so the version guard behaves like the database
// implementation: a conflicting order update rolls the capture back.
type PaymentRepository struct {
	mu       sync.Mutex
	orders   *OrderRepository
	payments map[uuid.UUID]*entity.Payment
}

func NewPaymentRepository(orders *OrderRepository) *PaymentRepository {
	return &PaymentRepository{
		orders:   orders,
		payments: make(map[uuid.UUID]*entity.Payment),
	}
}

func (r *PaymentRepository) Capture(ctx context.Context, payment *entity.Payment, order *entity.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()

	if err := r.orders.updateLocked(order); err != nil {
		return err
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for i := range payment.Allocations {
		if payment.Allocations[i].ID == uuid.Nil {
			payment.Allocations[i].ID = uuid.New()
		}
		payment.Allocations[i].PaymentID = payment.ID
	}
	r.payments[payment.ID] = clonePayment(payment)
	return nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var payments []entity.Payment
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			payments = append(payments, *clonePayment(payment))
		}
	}
	return payments, nil
}

func (r *PaymentRepository) SumCapturedByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, payment := range r.payments {
		if payment.OrderID == orderID && payment.Status == enum.PaymentStateCaptured {
			total += payment.Amount + payment.TipAmount
		}
	}
	return total, nil
}

func clonePayment(payment *entity.Payment) *entity.Payment {
	if payment == nil {
		return nil
	}
	clone := *payment
	clone.Allocations = append([]entity.OrderItemPayment(nil), payment.Allocations...)
	return &clone
}
