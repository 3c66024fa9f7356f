package service

import (
	"context"

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

// StockService exposes the manual side of the stock ledger: adjustments,
// counts, movement history and the low-stock report. Sales reservations go
// through the order service instead.
type StockService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	gate        CapabilityGate
	dispatcher  AutomationDispatcher
	logger      *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	gate CapabilityGate,
	dispatcher AutomationDispatcher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		gate:        gate,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// AdjustStockInput represents a manual stock adjustment
type AdjustStockInput struct {
	Delta  int
	Type   enum.MovementType
	Reason *string
	UserID *uuid.UUID
}

// AdjustStock applies a signed manual adjustment to a tracked product.
// Negative deltas cannot push the quantity below zero.
func (s *StockService) AdjustStock(ctx context.Context, productID uuid.UUID, input *AdjustStockInput) (*entity.StockMovement, error) {
	if err := s.gate.Require(ctx, CapStockAdjust); err != nil {
		return nil, err
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	if input.Delta == 0 {
		return nil, apperror.NewValidationError("Adjustment delta cannot be zero")
	}
	if !isManualMovement(input.Type) {
		return nil, apperror.NewValidationError("Movement type is not a manual adjustment")
	}
	if input.Delta < 0 && !input.Type.IsOutbound() {
		return nil, apperror.NewValidationError("Negative delta requires an outbound movement type")
	}
	if input.Delta > 0 && input.Type.IsOutbound() {
		return nil, apperror.NewValidationError("Positive delta requires an inbound movement type")
	}

	product, err := s.trackedProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	movement := &entity.StockMovement{
		OrganizationID: orgID,
		ProductID:      productID,
		Quantity:       input.Delta,
		Type:           input.Type,
		Reason:         input.Reason,
		UserID:         input.UserID,
	}

	ok, err = s.stockRepo.Adjust(ctx, movement)
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.StockReservationFailures.Inc()
		return nil, apperror.NewInsufficientStockError(product.Name)
	}

	s.notifyCrossing(ctx, orgID, product, movement)
	return movement, nil
}

// SetInventoryCount reconciles the cached quantity with a physical count.
// The correction is a normal ledger row, so the drift stays visible.
func (s *StockService) SetInventoryCount(ctx context.Context, productID uuid.UUID, counted int, userID *uuid.UUID) (*entity.StockMovement, error) {
	if err := s.gate.Require(ctx, CapStockAdjust); err != nil {
		return nil, err
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if counted < 0 {
		return nil, apperror.NewValidationError("Counted quantity cannot be negative")
	}

	product, err := s.trackedProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	delta := counted - product.Quantity
	if delta == 0 {
		return nil, nil
	}

	movement := &entity.StockMovement{
		OrganizationID: orgID,
		ProductID:      productID,
		Quantity:       delta,
		Type:           enum.MovementTypeInventoryCount,
		UserID:         userID,
	}

	applied, err := s.stockRepo.Adjust(ctx, movement)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent sale moved the quantity below the correction; the
		// count is stale and must be redone.
		return nil, apperror.NewConflictError("Stock changed during the count, retry")
	}

	s.notifyCrossing(ctx, orgID, product, movement)
	return movement, nil
}

// InitializeStock writes the opening balance row for a newly tracked product
func (s *StockService) InitializeStock(ctx context.Context, product *entity.Product, quantity int, userID *uuid.UUID) error {
	if quantity <= 0 {
		return nil
	}

	movement := &entity.StockMovement{
		OrganizationID: product.OrganizationID,
		ProductID:      product.ID,
		Quantity:       quantity,
		Type:           enum.MovementTypeInitial,
		UserID:         userID,
	}
	_, err := s.stockRepo.Adjust(ctx, movement)
	return err
}

// ListMovements returns a product's movement history, newest first
func (s *StockService) ListMovements(ctx context.Context, productID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.StockMovement], error) {
	if _, err := s.trackedProduct(ctx, productID); err != nil {
		return nil, err
	}

	movements, total, err := s.stockRepo.ListMovements(ctx, productID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(movements, pag), nil
}

// GetLowStock returns tracked products at or below their alert threshold
func (s *StockService) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}

func (s *StockService) trackedProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if !product.TracksInventory {
		return nil, apperror.NewValidationError("Product does not track inventory")
	}
	return product, nil
}

func (s *StockService) notifyCrossing(ctx context.Context, orgID uuid.UUID, product *entity.Product, movement *entity.StockMovement) {
	if s.dispatcher == nil || product.QuantityAlert <= 0 {
		return
	}
	if movement.QuantityBefore > product.QuantityAlert && movement.QuantityAfter <= product.QuantityAlert {
		trigger := messaging.AutomationTrigger{
			Type:           messaging.TriggerLowStock,
			OrganizationID: orgID.String(),
			Payload: map[string]any{
				"product_id":   product.ID.String(),
				"product_name": product.Name,
				"quantity":     movement.QuantityAfter,
				"alert_level":  product.QuantityAlert,
			},
		}
		if err := s.dispatcher.Dispatch(ctx, trigger); err != nil {
			s.logger.Warn("failed to dispatch low stock trigger",
				zap.Error(err),
				zap.String("product_id", product.ID.String()))
		}
	}
}

func isManualMovement(t enum.MovementType) bool {
	switch t {
	case enum.MovementTypeAdjustPlus, enum.MovementTypeAdjustMinus,
		enum.MovementTypeWaste, enum.MovementTypeTransferIn, enum.MovementTypeTransferOut:
		return true
	}
	return false
}
