package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// Capture persists the payment with its allocations and the order's
	// recomputed derived fields (paid amount, payment status, item paid
	// quantities, completion) in one transaction guarded by the order's
	// version. It returns apperror.ErrConflict when a racing mutation of the
	// same order won; the payment is not recorded in that case.
	Capture(ctx context.Context, payment *entity.Payment, order *entity.Order) error
	// ListByOrder returns an order's payments with their allocations
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error)
	// SumCapturedByOrder returns the sum of captured payment amounts plus
	// tips in cents, the authoritative source for an order's paid amount
	SumCapturedByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}
