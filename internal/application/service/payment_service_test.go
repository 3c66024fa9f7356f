package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
	"github.com/sokoni/eventpos-api/internal/infrastructure/messaging"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

type paymentEnv struct {
	*orderEnv
	payments *service.PaymentService
}

func newPaymentEnv(t *testing.T) *paymentEnv {
	t.Helper()
	env := newOrderEnv(t)
	return &paymentEnv{
		orderEnv: env,
		payments: service.NewPaymentService(
			env.payments, env.orders, authz.NewGate(), env.publisher, env.dispatcher, zap.NewNop()),
	}
}

// newOrder creates an order with two beers at 4.50 and one wine at 7.00,
// totalling 16.00
func (env *paymentEnv) newOrder(t *testing.T) *entity.Order {
	t.Helper()
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)
	wine := env.addProduct(t, "Wine", 700, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items: []service.OrderItemInput{
			{ProductID: beer.ID, Quantity: 2},
			{ProductID: wine.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1600), order.Total)
	return order
}

func TestPaymentService_CaptureFullPaymentCompletesOrder(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	payment, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 1600,
		Method: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStateCaptured, payment.Status)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, int64(1600), stored.PaidAmount)

	// FIFO allocation covered every unit
	for _, item := range stored.Items {
		assert.Equal(t, item.Quantity, item.PaidQuantity)
	}

	assert.Contains(t, env.publisher.events, messaging.PaymentReceivedKey)
	assert.Len(t, env.dispatcher.byType(messaging.TriggerPaymentReceived), 1)
	assert.Len(t, env.dispatcher.byType(messaging.TriggerOrderCompleted), 1)
}

func TestPaymentService_PartialPayments(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	// First split: one beer
	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 450,
		Method: "cash",
	})
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPartlyPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusOpen, stored.Status)
	assert.Equal(t, int64(1150), stored.RemainingAmount())

	// Second split settles the rest
	_, err = env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 1150,
		Method: "card",
	})
	require.NoError(t, err)

	stored, err = env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)

	captured, err := env.payments.ListPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, captured, 2)
}

func TestPaymentService_ExplicitAllocation(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	beerItem := order.Items[0]
	require.Equal(t, "Beer", beerItem.ProductName)

	payment, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 900,
		Method: "cash",
		Allocations: []service.AllocationInput{
			{ItemID: beerItem.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, payment.Allocations, 1)
	assert.Equal(t, int64(900), payment.Allocations[0].Amount)
	assert.Equal(t, 2, payment.Allocations[0].Quantity)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ItemByID(beerItem.ID).PaidQuantity)
	assert.Equal(t, enum.PaymentStatusPartlyPaid, stored.PaymentStatus)
}

func TestPaymentService_AllocationValidation(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")

	tests := []struct {
		name    string
		input   func(order *entity.Order) *service.CapturePaymentInput
		wantErr string
	}{
		{
			name: "amount_mismatch",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{
					Amount: 500,
					Method: "cash",
					Allocations: []service.AllocationInput{
						{ItemID: order.Items[0].ID, Quantity: 2},
					},
				}
			},
			wantErr: "does not match the allocated total",
		},
		{
			name: "over_allocated_quantity",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{
					Amount: 1350,
					Method: "cash",
					Allocations: []service.AllocationInput{
						{ItemID: order.Items[0].ID, Quantity: 3},
					},
				}
			},
			wantErr: "exceeds the unpaid quantity",
		},
		{
			name: "unknown_item",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{
					Amount: 450,
					Method: "cash",
					Allocations: []service.AllocationInput{
						{ItemID: uuid.New(), Quantity: 1},
					},
				}
			},
			wantErr: "not found",
		},
		{
			name: "zero_amount",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{Amount: 0, Method: "cash"}
			},
			wantErr: "must be positive",
		},
		{
			name: "missing_method",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{Amount: 450}
			},
			wantErr: "method is required",
		},
		{
			name: "overpayment",
			input: func(order *entity.Order) *service.CapturePaymentInput {
				return &service.CapturePaymentInput{Amount: 2000, Method: "cash"}
			},
			wantErr: "exceeds the remaining balance",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			order := env.newOrder(t)
			_, err := env.payments.CapturePayment(ctx, order.ID, testCase.input(order))
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}
}

func TestPaymentService_AlreadyPaid(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 1600, Method: "card"})
	require.NoError(t, err)

	_, err = env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 100, Method: "cash"})
	assert.ErrorIs(t, err, apperror.ErrOrderAlreadyPaid)
}

func TestPaymentService_CancelledOrderRejected(t *testing.T) {
	env := newPaymentEnv(t)
	order := env.newOrder(t)

	_, err := env.service.CancelOrder(env.ctx("orders:cancel"), order.ID, nil)
	require.NoError(t, err)

	_, err = env.payments.CapturePayment(env.ctx("payments:capture"), order.ID, &service.CapturePaymentInput{
		Amount: 450,
		Method: "cash",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cancelled orders")
}

func TestPaymentService_FIFOSkipsCancelledAndPaidLines(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture", "orders:cancel")
	order := env.newOrder(t)

	// Pay the beers explicitly, then cancel nothing; a FIFO payment for the
	// rest must land on the wine only.
	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 900,
		Method: "cash",
		Allocations: []service.AllocationInput{
			{ItemID: order.Items[0].ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	payment, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 700,
		Method: "cash",
	})
	require.NoError(t, err)
	require.Len(t, payment.Allocations, 1)
	assert.Equal(t, order.Items[1].ID, payment.Allocations[0].OrderItemID)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)
}

func TestPaymentService_TipExcludedFromBalance(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	// Amount covers the full balance; the tip rides on top and must not
	// produce an overpayment error.
	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount:    1600,
		TipAmount: 200,
		Method:    "card",
	})
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), stored.TipAmount)
	assert.Equal(t, int64(1800), stored.Total)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)
}

func TestPaymentService_DiscountedOrderFullySettlesItems(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("orders:write", "payments:capture")
	order := env.newOrder(t)

	discount := int64(100)
	reason := "loyalty"
	updated, err := env.service.UpdateOrder(ctx, order.ID, &service.UpdateOrderInput{
		DiscountAmount: &discount,
		DiscountReason: &reason,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1500), updated.Total)

	payment, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 1500,
		Method: "card",
	})
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)

	// The discount makes the money run out before the unit prices do, but a
	// settled order must not leave any unit partially paid.
	for _, item := range stored.Items {
		assert.Equal(t, item.Quantity, item.PaidQuantity, item.ProductName)
	}

	allocatedQty := map[uuid.UUID]int{}
	for _, allocation := range payment.Allocations {
		allocatedQty[allocation.OrderItemID] += allocation.Quantity
	}
	for _, item := range stored.Items {
		assert.Equal(t, item.PaidQuantity, allocatedQty[item.ID], item.ProductName)
	}
}

func TestPaymentService_PaidAmountDerivedFromCaptures(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 450, Method: "cash"})
	require.NoError(t, err)

	// A stale write clobbers the running figure on the stored order; the next
	// capture must rebuild it from the payments, not trust the copy.
	stale, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	stale.PaidAmount = 0
	stale.PaymentStatus = enum.PaymentStatusUnpaid
	require.NoError(t, env.orders.Update(ctx, stale))

	_, err = env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 1150, Method: "card"})
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), stored.PaidAmount)
	assert.Equal(t, enum.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, enum.OrderStatusCompleted, stored.Status)
}

func TestPaymentService_SumCaptured(t *testing.T) {
	env := newPaymentEnv(t)
	ctx := env.ctx("payments:capture")
	order := env.newOrder(t)

	_, err := env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 450, Method: "cash"})
	require.NoError(t, err)
	_, err = env.payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 450, Method: "card"})
	require.NoError(t, err)

	total, err := env.orderEnv.payments.SumCapturedByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), total)
}
