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
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

// paymentEpsilon is the rounding tolerance in cents when comparing a payment
// against the derived allocation sum or the remaining balance.
const paymentEpsilon = int64(1)

// PaymentService captures payments against orders and allocates them to
// individual lines, so split payments ("I pay these two beers") stay
// consistent with the order's derived payment status.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	gate        CapabilityGate
	publisher   EventPublisher
	dispatcher  AutomationDispatcher
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	gate CapabilityGate,
	publisher EventPublisher,
	dispatcher AutomationDispatcher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		gate:        gate,
		publisher:   publisher,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// AllocationInput names an order item and the quantity of it this payment
// covers
type AllocationInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// CapturePaymentInput represents the capture payment input. Amount and
// TipAmount are in cents.
type CapturePaymentInput struct {
	Amount       int64
	TipAmount    int64
	Method       string
	Provider     *string
	ProviderTxID *string
	UserID       *uuid.UUID
	DeviceID     *uuid.UUID
	Allocations  []AllocationInput
}

// CapturePayment validates the amount against the order's remaining balance,
// allocates it to item quantities (explicitly or first-come-first-served)
// and persists payment and order updates atomically under the order's
// version guard. An order that becomes fully paid is completed.
func (s *PaymentService) CapturePayment(ctx context.Context, orderID uuid.UUID, input *CapturePaymentInput) (*entity.Payment, error) {
	if err := s.gate.Require(ctx, CapPaymentsCapture); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.Status == enum.OrderStatusCancelled {
		return nil, apperror.NewConflictError("Cancelled orders cannot receive payments")
	}

	if input.Amount <= 0 {
		return nil, apperror.NewValidationError("Payment amount must be positive")
	}
	if input.TipAmount < 0 {
		return nil, apperror.NewValidationError("Tip amount cannot be negative")
	}
	if input.Method == "" {
		return nil, apperror.NewValidationError("Payment method is required")
	}

	// Paid amount is derived from the captured payments, never from the
	// loaded order copy.
	capturedBefore, err := s.paymentRepo.SumCapturedByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.PaidAmount = capturedBefore

	remaining := order.RemainingAmount()
	if remaining <= 0 {
		return nil, apperror.ErrOrderAlreadyPaid
	}
	if input.Amount > remaining+paymentEpsilon {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("Payment exceeds the remaining balance of %d cents", remaining))
	}

	allocations, err := s.allocate(order, input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &entity.Payment{
		ID:             uuid.New(),
		OrganizationID: order.OrganizationID,
		OrderID:        order.ID,
		Amount:         input.Amount,
		TipAmount:      input.TipAmount,
		Method:         input.Method,
		Provider:       input.Provider,
		ProviderTxID:   input.ProviderTxID,
		Status:         enum.PaymentStateCaptured,
		UserID:         input.UserID,
		DeviceID:       input.DeviceID,
		Allocations:    allocations,
	}

	// The tip raises the order total, so it counts as paid money too;
	// otherwise a tipped order could never reach paid.
	order.TipAmount += input.TipAmount
	order.RecomputeTotals()
	order.PaidAmount = capturedBefore + input.Amount + input.TipAmount
	order.RecomputePaymentStatus()

	completed := false
	if order.PaymentStatus == enum.PaymentStatusPaid {
		saturatePaidQuantities(order, payment)
		if !order.Status.IsTerminal() {
			order.Status = enum.OrderStatusCompleted
			order.CompletedAt = &now
			completed = true
		}
	}

	if err := s.paymentRepo.Capture(ctx, payment, order); err != nil {
		if apperror.IsConflict(err) {
			observability.VersionConflicts.Inc()
		}
		return nil, err
	}

	observability.PaymentsCaptured.WithLabelValues(payment.Method).Inc()
	if completed {
		observability.OrdersCompleted.Inc()
	}

	s.publishPayment(ctx, order, payment)
	s.dispatch(ctx, messaging.AutomationTrigger{
		Type:           messaging.TriggerPaymentReceived,
		OrganizationID: order.OrganizationID.String(),
		Payload: map[string]any{
			"order_id":   order.ID.String(),
			"payment_id": payment.ID.String(),
			"amount":     payment.Amount,
			"method":     payment.Method,
		},
	})
	if completed {
		s.dispatch(ctx, messaging.AutomationTrigger{
			Type:           messaging.TriggerOrderCompleted,
			OrganizationID: order.OrganizationID.String(),
			Payload: map[string]any{
				"order_id":     order.ID.String(),
				"order_number": order.OrderNumber,
				"total":        order.Total,
			},
		})
	}

	return payment, nil
}

// ListPayments returns an order's payments with their allocations
func (s *PaymentService) ListPayments(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return s.paymentRepo.ListByOrder(ctx, orderID)
}

// allocate mutates the order items' paid quantities and returns the line
// allocations of the payment. Explicit allocations must cover unpaid
// quantity only and sum up to the payment amount; without explicit
// allocations, whole unpaid units are covered in item order until the
// amount is spent.
func (s *PaymentService) allocate(order *entity.Order, input *CapturePaymentInput) ([]entity.OrderItemPayment, error) {
	if len(input.Allocations) > 0 {
		return allocateExplicit(order, input)
	}
	return allocateFIFO(order, input.Amount), nil
}

func allocateExplicit(order *entity.Order, input *CapturePaymentInput) ([]entity.OrderItemPayment, error) {
	var allocations []entity.OrderItemPayment
	var allocated int64

	for _, alloc := range input.Allocations {
		item := order.ItemByID(alloc.ItemID)
		if item == nil {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Order item %s", alloc.ItemID))
		}
		if item.Status == enum.OrderItemStatusCancelled {
			return nil, apperror.NewValidationError(
				fmt.Sprintf("Cancelled item %s cannot be paid", item.ProductName))
		}
		if alloc.Quantity <= 0 {
			return nil, apperror.NewValidationError("Allocation quantity must be positive")
		}
		if alloc.Quantity > item.UnpaidQuantity() {
			return nil, apperror.NewValidationError(
				fmt.Sprintf("Allocation exceeds the unpaid quantity of %s", item.ProductName))
		}

		amount := item.UnitTotal() * int64(alloc.Quantity)
		item.PaidQuantity += alloc.Quantity
		allocated += amount
		allocations = append(allocations, entity.OrderItemPayment{
			OrderItemID: item.ID,
			Quantity:    alloc.Quantity,
			Amount:      amount,
		})
	}

	diff := input.Amount - allocated
	if diff < -paymentEpsilon || diff > paymentEpsilon {
		return nil, apperror.NewValidationError(
			fmt.Sprintf("Payment amount %d does not match the allocated total %d", input.Amount, allocated))
	}
	return allocations, nil
}

// saturatePaidQuantities marks every non-cancelled item fully paid once the
// order itself is. Discounts make the money run out before the unit prices
// do, so the allocators can leave whole units uncovered on an order that is
// nonetheless settled. The extra allocation rows keep the per-item quantity
// sums equal to the paid quantities; the payment's leftover money is
// attributed to them in item order.
func saturatePaidQuantities(order *entity.Order, payment *entity.Payment) {
	leftover := payment.Amount
	for i := range payment.Allocations {
		leftover -= payment.Allocations[i].Amount
	}
	if leftover < 0 {
		leftover = 0
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.Status == enum.OrderItemStatusCancelled {
			continue
		}
		unpaid := item.UnpaidQuantity()
		if unpaid <= 0 {
			continue
		}

		amount := item.UnitTotal() * int64(unpaid)
		if amount > leftover {
			amount = leftover
		}
		leftover -= amount

		item.PaidQuantity = item.Quantity
		payment.Allocations = append(payment.Allocations, entity.OrderItemPayment{
			OrderItemID: item.ID,
			Quantity:    unpaid,
			Amount:      amount,
		})
	}
}

func allocateFIFO(order *entity.Order, amount int64) []entity.OrderItemPayment {
	var allocations []entity.OrderItemPayment
	remaining := amount

	for i := range order.Items {
		item := &order.Items[i]
		if item.Status == enum.OrderItemStatusCancelled || item.UnpaidQuantity() == 0 {
			continue
		}

		unitTotal := item.UnitTotal()
		if unitTotal <= 0 {
			continue
		}

		units := int(remaining / unitTotal)
		if units == 0 {
			continue
		}
		if unpaid := item.UnpaidQuantity(); units > unpaid {
			units = unpaid
		}

		lineAmount := unitTotal * int64(units)
		item.PaidQuantity += units
		remaining -= lineAmount
		allocations = append(allocations, entity.OrderItemPayment{
			OrderItemID: item.ID,
			Quantity:    units,
			Amount:      lineAmount,
		})
		if remaining <= 0 {
			break
		}
	}
	return allocations
}

func (s *PaymentService) publishPayment(ctx context.Context, order *entity.Order, payment *entity.Payment) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"order_id":       order.ID.String(),
		"order_number":   order.OrderNumber,
		"payment_id":     payment.ID.String(),
		"amount":         payment.Amount,
		"method":         payment.Method,
		"payment_status": order.PaymentStatus.String(),
	}
	if err := s.publisher.Publish(ctx, messaging.PaymentReceivedKey, payload); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.Error(err),
			zap.String("order_id", order.ID.String()))
	}
}

func (s *PaymentService) dispatch(ctx context.Context, trigger messaging.AutomationTrigger) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, trigger); err != nil {
		s.logger.Warn("failed to dispatch automation trigger",
			zap.Error(err),
			zap.String("type", trigger.Type))
	}
}
