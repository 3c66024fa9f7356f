package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/infrastructure/messaging"
	"github.com/sokoni/eventpos-api/internal/infrastructure/observability"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

// OrderService handles the order lifecycle: creation with stock reservation
// and number allocation, item mutations, status transitions and cancellation
type OrderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	sequenceRepo repository.SequenceRepository
	eventRepo    repository.EventRepository
	gate         CapabilityGate
	publisher    EventPublisher
	dispatcher   AutomationDispatcher
	logger       *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	sequenceRepo repository.SequenceRepository,
	eventRepo repository.EventRepository,
	gate CapabilityGate,
	publisher EventPublisher,
	dispatcher AutomationDispatcher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		sequenceRepo: sequenceRepo,
		eventRepo:    eventRepo,
		gate:         gate,
		publisher:    publisher,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// OrderItemInput represents one requested line in an order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Options   []string
	Notes     *string
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	EventID   uuid.UUID
	Source    enum.OrderSource
	UserID    *uuid.UUID
	DeviceID  *uuid.UUID
	SessionID *uuid.UUID
	Priority  int
	Notes     *string
	Items     []OrderItemInput
}

// CreateOrder creates an order: it validates the event and every product,
// reserves stock for tracked products, allocates the daily number and
// persists the order. Reservations already made are released when a later
// step fails, so a rejected order never leaks stock.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	// Online and QR sessions carry no staff actor; the counter path is gated.
	if input.Source == enum.OrderSourceCounter {
		if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
			return nil, err
		}
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	if len(input.Items) == 0 {
		return nil, apperror.NewValidationError("Order must contain at least one item")
	}

	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	if !event.IsActive() {
		return nil, apperror.NewConflictError("Event is not accepting orders")
	}

	products, err := s.loadProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:             uuid.New(),
		OrganizationID: orgID,
		EventID:        event.ID,
		Status:         enum.OrderStatusOpen,
		Source:         input.Source,
		Priority:       input.Priority,
		Notes:          input.Notes,
		UserID:         input.UserID,
		DeviceID:       input.DeviceID,
		SessionID:      input.SessionID,
		Version:        1,
		CreatedAt:      now,
	}

	for _, itemInput := range input.Items {
		item, err := priceLine(products[itemInput.ProductID], &itemInput)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	reserved, err := s.reserveItems(ctx, order, products)
	if err != nil {
		return nil, err
	}

	if err := s.allocateNumber(ctx, order, now); err != nil {
		s.releaseMovements(ctx, reserved)
		return nil, err
	}

	order.RecomputeTotals()
	order.RecomputePaymentStatus()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.releaseMovements(ctx, reserved)
		return nil, err
	}

	observability.OrdersCreated.WithLabelValues(order.Source.String()).Inc()
	s.publishOrder(ctx, messaging.OrderCreatedKey, order)
	s.dispatch(ctx, messaging.AutomationTrigger{
		Type:           messaging.TriggerOrderCreated,
		OrganizationID: orgID.String(),
		Payload: map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"total":        order.Total,
		},
	})
	s.notifyLowStock(ctx, orgID, products, reserved)

	return s.orderRepo.GetByID(ctx, order.ID)
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders lists orders with filtering
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// AddItem appends a priced line to an open or in-progress order, reserving
// stock first. The write is guarded by the order's version; on conflict the
// reservation is released and the caller should retry with a fresh read.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, input *OrderItemInput) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	item, err := priceLine(product, input)
	if err != nil {
		return nil, err
	}
	item.ID = uuid.New()
	item.OrderID = order.ID

	var reserved []entity.StockMovement
	if product.TracksInventory {
		movement := s.saleMovement(order, product.ID, -item.Quantity)
		ok, err := s.stockRepo.Reserve(ctx, movement)
		if err != nil {
			return nil, err
		}
		if !ok {
			observability.StockReservationFailures.Inc()
			return nil, apperror.NewInsufficientStockError(product.Name)
		}
		reserved = append(reserved, *movement)
	}

	order.Items = append(order.Items, *item)
	order.RecomputeTotals()
	order.RecomputePaymentStatus()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.releaseMovements(ctx, reserved)
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	s.publishOrder(ctx, messaging.OrderUpdatedKey, order)
	s.notifyLowStock(ctx, order.OrganizationID, map[uuid.UUID]*entity.Product{product.ID: product}, reserved)
	return s.orderRepo.GetByID(ctx, order.ID)
}

// UpdateItemStatus moves one item forward through its preparation flow.
// Cancellation is not reachable here; it goes through CancelItem so the
// stock restore happens.
func (s *OrderService) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, next enum.OrderItemStatus) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
		return nil, err
	}
	if next == enum.OrderItemStatusCancelled {
		return nil, apperror.NewValidationError("Items are cancelled through the cancel operation")
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewConflictError("Order is already closed")
	}

	item := order.ItemByID(itemID)
	if item == nil {
		return nil, apperror.NewNotFoundError("Order item")
	}
	if !item.Status.CanTransitionTo(next) {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("Item cannot move from %s to %s", item.Status, next))
	}

	now := time.Now()
	item.Status = next
	switch next {
	case enum.OrderItemStatusPreparing:
		item.StartedAt = &now
	case enum.OrderItemStatusReady:
		item.ReadyAt = &now
	case enum.OrderItemStatusDelivered:
		item.DeliveredAt = &now
	}

	order.SyncStatusFromItems(now)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	s.publishItemStatus(ctx, order, item)
	return s.orderRepo.GetByID(ctx, order.ID)
}

// UpdateItemQuantity changes the quantity of a pending line. An increase
// reserves the delta first, a decrease releases it after the commit; either
// way the reservation and the order write stay consistent because the write
// is guarded by the order's version.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperror.NewValidationError("Item quantity must be positive")
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}

	item := order.ItemByID(itemID)
	if item == nil {
		return nil, apperror.NewNotFoundError("Order item")
	}
	if item.Status != enum.OrderItemStatusPending {
		return nil, apperror.NewValidationError("Quantity can only change while the item is pending")
	}
	if quantity < item.PaidQuantity {
		return nil, apperror.NewValidationError("Quantity cannot drop below the paid quantity")
	}

	delta := quantity - item.Quantity
	if delta == 0 {
		return order, nil
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	tracked := product != nil && product.TracksInventory

	var reserved []entity.StockMovement
	if tracked && delta > 0 {
		movement := s.saleMovement(order, item.ProductID, -delta)
		ok, err := s.stockRepo.Reserve(ctx, movement)
		if err != nil {
			return nil, err
		}
		if !ok {
			observability.StockReservationFailures.Inc()
			return nil, apperror.NewInsufficientStockError(item.ProductName)
		}
		reserved = append(reserved, *movement)
	}

	item.Quantity = quantity
	item.RecomputeTotalPrice()
	order.RecomputeTotals()
	order.RecomputePaymentStatus()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.releaseMovements(ctx, reserved)
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	if tracked && delta < 0 {
		movement := s.saleMovement(order, item.ProductID, -delta)
		movement.Type = enum.MovementTypeSaleCancelled
		clamped, err := s.stockRepo.Release(ctx, movement)
		if err != nil {
			s.logger.Error("failed to release stock for reduced quantity",
				zap.Error(err),
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()))
		} else if clamped {
			s.logger.Warn("stock quantity was negative before release",
				zap.String("product_id", item.ProductID.String()))
		}
	}

	s.publishOrder(ctx, messaging.OrderUpdatedKey, order)
	if product != nil {
		s.notifyLowStock(ctx, order.OrganizationID, map[uuid.UUID]*entity.Product{product.ID: product}, reserved)
	}
	return s.orderRepo.GetByID(ctx, order.ID)
}

// CancelItem cancels one line and restores its stock. Lines that already
// have paid quantity cannot be cancelled.
func (s *OrderService) CancelItem(ctx context.Context, orderID, itemID uuid.UUID, reason *string) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersCancel); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewConflictError("Order is already closed")
	}

	item := order.ItemByID(itemID)
	if item == nil {
		return nil, apperror.NewNotFoundError("Order item")
	}
	if item.Status.IsTerminal() {
		return nil, apperror.NewConflictError("Item is already in a terminal status")
	}
	if item.PaidQuantity > 0 {
		return nil, apperror.NewValidationError("Paid items cannot be cancelled")
	}

	now := time.Now()
	item.Status = enum.OrderItemStatusCancelled
	item.CancelledAt = &now

	order.RecomputeTotals()
	order.RecomputePaymentStatus()
	order.SyncStatusFromItems(now)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	// Restore happens after the commit: the release cannot fail on
	// insufficient stock, so no compensation path is needed here.
	s.restoreItemStock(ctx, order, item, reason)

	s.publishItemStatus(ctx, order, item)
	return s.orderRepo.GetByID(ctx, order.ID)
}

// CancelOrder cancels a whole order and restores stock for every active
// line. Captured payments stay on the order untouched; a refund is a
// separate compensating record, not part of cancellation.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason *string) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersCancel); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewConflictError("Order is already closed")
	}

	now := time.Now()
	var cancelled []*entity.OrderItem
	for i := range order.Items {
		item := &order.Items[i]
		if item.Status.IsTerminal() {
			continue
		}
		item.Status = enum.OrderItemStatusCancelled
		item.CancelledAt = &now
		cancelled = append(cancelled, item)
	}

	order.Status = enum.OrderStatusCancelled
	order.CancelledAt = &now
	order.RecomputeTotals()
	order.RecomputePaymentStatus()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	for _, item := range cancelled {
		s.restoreItemStock(ctx, order, item, reason)
	}

	s.publishOrder(ctx, messaging.OrderUpdatedKey, order)
	return s.orderRepo.GetByID(ctx, order.ID)
}

// CompleteOrder explicitly closes a fully paid order. Payment capture
// completes orders on its own; this is the path for orders that became paid
// without crossing that threshold in a single capture.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperror.NewValidationError("Order is already closed")
	}
	if order.PaymentStatus != enum.PaymentStatusPaid {
		return nil, apperror.NewValidationError("Order must be fully paid before completion")
	}

	now := time.Now()
	order.Status = enum.OrderStatusCompleted
	order.CompletedAt = &now

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	observability.OrdersCompleted.Inc()
	s.publishOrder(ctx, messaging.OrderUpdatedKey, order)
	s.dispatch(ctx, messaging.AutomationTrigger{
		Type:           messaging.TriggerOrderCompleted,
		OrganizationID: order.OrganizationID.String(),
		Payload: map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"total":        order.Total,
		},
	})
	return s.orderRepo.GetByID(ctx, order.ID)
}

// UpdateOrderInput carries the mutable header fields of an order
type UpdateOrderInput struct {
	Priority       *int
	Notes          *string
	TipAmount      *int64
	DiscountAmount *int64
	DiscountReason *string
}

// UpdateOrder changes header fields of an open order and recomputes the
// derived totals
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, input *UpdateOrderInput) (*entity.Order, error) {
	if err := s.gate.Require(ctx, CapOrdersWrite); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := ensureMutable(order); err != nil {
		return nil, err
	}

	if input.Priority != nil {
		order.Priority = *input.Priority
	}
	if input.Notes != nil {
		order.Notes = input.Notes
	}
	if input.TipAmount != nil {
		if *input.TipAmount < 0 {
			return nil, apperror.NewValidationError("Tip amount cannot be negative")
		}
		order.TipAmount = *input.TipAmount
	}
	if input.DiscountAmount != nil {
		if *input.DiscountAmount < 0 {
			return nil, apperror.NewValidationError("Discount amount cannot be negative")
		}
		if *input.DiscountAmount > order.SubTotal {
			return nil, apperror.NewValidationError("Discount cannot exceed the order subtotal")
		}
		if *input.DiscountAmount > 0 && (input.DiscountReason == nil || *input.DiscountReason == "") {
			return nil, apperror.NewValidationError("Discount reason is required")
		}
		order.DiscountAmount = *input.DiscountAmount
		order.DiscountReason = input.DiscountReason
	}

	order.RecomputeTotals()
	order.RecomputePaymentStatus()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	s.publishOrder(ctx, messaging.OrderUpdatedKey, order)
	return s.orderRepo.GetByID(ctx, order.ID)
}

func (s *OrderService) loadProducts(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]*entity.Product, error) {
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	for _, item := range items {
		if _, exists := productMap[item.ProductID]; !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
	}
	return productMap, nil
}

// priceLine snapshots name, category, unit price, option deltas and tax rate
// onto a fresh order item
func priceLine(product *entity.Product, input *OrderItemInput) (*entity.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidationError("Item quantity must be positive")
	}
	if !product.IsActive || !product.IsAvailable {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("Product %s is not available", product.Name))
	}

	categoryName := ""
	if product.Category != nil {
		categoryName = product.Category.Name
	}

	item := &entity.OrderItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		CategoryName: categoryName,
		Quantity:     input.Quantity,
		UnitPrice:    product.Price,
		OptionsPrice: product.Modifiers.PriceFor(input.Options),
		TaxRate:      product.TaxRate,
		Options:      entity.StringList(input.Options),
		Status:       enum.OrderItemStatusPending,
		Notes:        input.Notes,
	}
	item.RecomputeTotalPrice()
	return item, nil
}

// reserveItems reserves stock for every tracked line of a not-yet-persisted
// order. When one reservation fails, the earlier ones are released before
// the error is returned.
func (s *OrderService) reserveItems(ctx context.Context, order *entity.Order, products map[uuid.UUID]*entity.Product) ([]entity.StockMovement, error) {
	var reserved []entity.StockMovement
	for i := range order.Items {
		item := &order.Items[i]
		product := products[item.ProductID]
		if !product.TracksInventory {
			continue
		}

		movement := s.saleMovement(order, product.ID, -item.Quantity)
		ok, err := s.stockRepo.Reserve(ctx, movement)
		if err != nil {
			s.releaseMovements(ctx, reserved)
			return nil, err
		}
		if !ok {
			observability.StockReservationFailures.Inc()
			s.releaseMovements(ctx, reserved)
			return nil, apperror.NewInsufficientStockError(product.Name)
		}
		reserved = append(reserved, *movement)
	}
	return reserved, nil
}

func (s *OrderService) saleMovement(order *entity.Order, productID uuid.UUID, delta int) *entity.StockMovement {
	ref := entity.OrderReference(order.ID)
	eventID := order.EventID
	return &entity.StockMovement{
		OrganizationID: order.OrganizationID,
		ProductID:      productID,
		EventID:        &eventID,
		Quantity:       delta,
		Type:           enum.MovementTypeSale,
		ReferenceType:  &ref.Type,
		ReferenceID:    &ref.ID,
		UserID:         order.UserID,
	}
}

// releaseMovements compensates reservations after a failed creation. A
// failing release is logged and skipped; the ledger keeps the reservation
// row, so the discrepancy stays auditable.
func (s *OrderService) releaseMovements(ctx context.Context, reserved []entity.StockMovement) {
	for i := range reserved {
		movement := reserved[i]
		movement.ID = uuid.Nil
		movement.Quantity = -movement.Quantity
		movement.Type = enum.MovementTypeSaleCancelled
		clamped, err := s.stockRepo.Release(ctx, &movement)
		if err != nil {
			s.logger.Error("failed to release reserved stock",
				zap.Error(err),
				zap.String("product_id", movement.ProductID.String()))
			continue
		}
		if clamped {
			s.logger.Warn("stock quantity was negative before release",
				zap.String("product_id", movement.ProductID.String()))
		}
	}
}

func (s *OrderService) restoreItemStock(ctx context.Context, order *entity.Order, item *entity.OrderItem, reason *string) {
	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil || product == nil || !product.TracksInventory {
		if err != nil {
			s.logger.Error("failed to load product for stock restore",
				zap.Error(err),
				zap.String("product_id", item.ProductID.String()))
		}
		return
	}

	movement := s.saleMovement(order, item.ProductID, item.Quantity)
	movement.Type = enum.MovementTypeSaleCancelled
	movement.Reason = reason
	clamped, err := s.stockRepo.Release(ctx, movement)
	if err != nil {
		s.logger.Error("failed to restore stock for cancelled item",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
			zap.String("product_id", item.ProductID.String()))
		return
	}
	if clamped {
		s.logger.Warn("stock quantity was negative before restore",
			zap.String("product_id", item.ProductID.String()))
	}
}

// allocateNumber assigns the order number from the organization's per-day
// counter and the daily number from the per-day counter of the organization
// and event. The two scopes differ: order numbers must be unique across the
// whole organization, daily numbers reset per event.
func (s *OrderService) allocateNumber(ctx context.Context, order *entity.Order, now time.Time) error {
	date := now.Format("20060102")

	orderCounter, err := s.sequenceRepo.Next(ctx, fmt.Sprintf("org:%s", order.OrganizationID), date)
	if err != nil {
		return err
	}
	order.OrderNumber = fmt.Sprintf("%s-%04d", date, orderCounter)

	dailyCounter, err := s.sequenceRepo.Next(ctx,
		fmt.Sprintf("org:%s:event:%s", order.OrganizationID, order.EventID), date)
	if err != nil {
		return err
	}
	order.DailyNumber = dailyCounter
	return nil
}

func (s *OrderService) publishOrder(ctx context.Context, routingKey string, order *entity.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, order); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
			zap.String("order_id", order.ID.String()))
	}
}

func (s *OrderService) publishItemStatus(ctx context.Context, order *entity.Order, item *entity.OrderItem) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"item_id":      item.ID.String(),
		"product_name": item.ProductName,
		"status":       item.Status.String(),
	}
	if err := s.publisher.Publish(ctx, messaging.ItemStatusChangedKey, payload); err != nil {
		s.logger.Warn("failed to publish item status event",
			zap.Error(err),
			zap.String("order_id", order.ID.String()))
	}
}

func (s *OrderService) dispatch(ctx context.Context, trigger messaging.AutomationTrigger) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, trigger); err != nil {
		s.logger.Warn("failed to dispatch automation trigger",
			zap.Error(err),
			zap.String("type", trigger.Type))
	}
}

// notifyLowStock dispatches a trigger for every reservation that moved a
// product from above its alert threshold to at or below it
func (s *OrderService) notifyLowStock(ctx context.Context, orgID uuid.UUID, products map[uuid.UUID]*entity.Product, reserved []entity.StockMovement) {
	for i := range reserved {
		movement := &reserved[i]
		product, exists := products[movement.ProductID]
		if !exists || product.QuantityAlert <= 0 {
			continue
		}
		if movement.QuantityBefore > product.QuantityAlert && movement.QuantityAfter <= product.QuantityAlert {
			s.dispatch(ctx, messaging.AutomationTrigger{
				Type:           messaging.TriggerLowStock,
				OrganizationID: orgID.String(),
				Payload: map[string]any{
					"product_id":   product.ID.String(),
					"product_name": product.Name,
					"quantity":     movement.QuantityAfter,
					"alert_level":  product.QuantityAlert,
				},
			})
		}
	}
}

func ensureMutable(order *entity.Order) error {
	if order.Status != enum.OrderStatusOpen && order.Status != enum.OrderStatusInProgress {
		return apperror.NewConflictError("Order can no longer be modified")
	}
	return nil
}
