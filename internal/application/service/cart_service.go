package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

// CartService manages the transient carts of online-ordering sessions. Carts
// never touch stock; reservation happens when the cart is submitted.
type CartService struct {
	cartStore   CartStore
	eventRepo   repository.EventRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(
	cartStore CartStore,
	eventRepo repository.EventRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartStore:   cartStore,
		eventRepo:   eventRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// StartSession opens a new ordering session against an active event and
// returns its empty cart
func (s *CartService) StartSession(ctx context.Context, eventID uuid.UUID, source enum.OrderSource) (*entity.Cart, error) {
	if source != enum.OrderSourceOnlineSession && source != enum.OrderSourceQROrder {
		return nil, apperror.NewValidationError("Sessions are only opened for online or QR ordering")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	if !event.IsActive() {
		return nil, apperror.NewConflictError("Event is not accepting orders")
	}

	cart := &entity.Cart{
		SessionID: uuid.New(),
		EventID:   event.ID,
		Source:    source,
	}
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart retrieves a session's cart
func (s *CartService) GetCart(ctx context.Context, sessionID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperror.NewNotFoundError("Session")
	}
	return cart, nil
}

// AddItem validates the product and merges the line into the cart. Prices
// are not stored; the catalog is priced at submit time.
func (s *CartService) AddItem(ctx context.Context, sessionID uuid.UUID, item entity.CartItem) (*entity.Cart, error) {
	if item.Quantity <= 0 {
		return nil, apperror.NewValidationError("Item quantity must be positive")
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if !product.IsActive || !product.IsAvailable {
		return nil, apperror.NewValidationError("Product is not available")
	}

	cart.UpsertItem(item)
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes the line at the given index from the cart
func (s *CartService) RemoveItem(ctx context.Context, sessionID uuid.UUID, index int) (*entity.Cart, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(cart.Items) {
		return nil, apperror.NewValidationError("Cart item index out of range")
	}

	cart.RemoveItem(index)
	if err := s.cartStore.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Abandon drops a session's cart
func (s *CartService) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.GetCart(ctx, sessionID); err != nil {
		return err
	}
	return s.cartStore.Delete(ctx, sessionID)
}
