package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

// IngestionService turns submitted session carts into orders. Pricing and
// stock reservation both happen here, at submit time: a cart can always be
// filled, but submission fails when stock ran out in the meantime.
type IngestionService struct {
	orderService *OrderService
	cartService  *CartService
	cartStore    CartStore
	logger       *zap.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	orderService *OrderService,
	cartService *CartService,
	cartStore CartStore,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		orderService: orderService,
		cartService:  cartService,
		cartStore:    cartStore,
		logger:       logger,
	}
}

// Checkout submits a session's cart as an order. The cart is deleted only
// after the order was created, so a failed submission leaves it intact for
// another attempt.
func (s *IngestionService) Checkout(ctx context.Context, sessionID uuid.UUID) (*entity.Order, error) {
	cart, err := s.cartService.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperror.NewValidationError("Cart is empty")
	}

	input := &CreateOrderInput{
		EventID:   cart.EventID,
		Source:    cart.Source,
		SessionID: &cart.SessionID,
	}
	for _, line := range cart.Items {
		input.Items = append(input.Items, OrderItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Options:   line.Options,
			Notes:     line.Notes,
		})
	}

	order, err := s.orderService.CreateOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.cartStore.Delete(ctx, sessionID); err != nil {
		// The order exists; a stale cart only blocks this session from
		// ordering twice until the TTL clears it.
		s.logger.Warn("failed to delete cart after checkout",
			zap.Error(err),
			zap.String("session_id", sessionID.String()))
	}
	return order, nil
}
