package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
	"github.com/sokoni/eventpos-api/internal/infrastructure/memory"
	"github.com/sokoni/eventpos-api/internal/infrastructure/messaging"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
)

// recordingDispatcher collects automation triggers instead of writing to Kafka
type recordingDispatcher struct {
	mu       sync.Mutex
	triggers []messaging.AutomationTrigger
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, trigger messaging.AutomationTrigger) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.triggers = append(d.triggers, trigger)
	return nil
}

func (d *recordingDispatcher) byType(triggerType string) []messaging.AutomationTrigger {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []messaging.AutomationTrigger
	for _, trigger := range d.triggers {
		if trigger.Type == triggerType {
			matched = append(matched, trigger)
		}
	}
	return matched
}

// recordingPublisher collects routed events instead of writing to RabbitMQ
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

type orderEnv struct {
	orgID      uuid.UUID
	event      *entity.Event
	products   *memory.ProductRepository
	stock      *memory.StockRepository
	orders     *memory.OrderRepository
	payments   *memory.PaymentRepository
	sequences  *memory.SequenceRepository
	events     *memory.EventRepository
	dispatcher *recordingDispatcher
	publisher  *recordingPublisher
	service    *service.OrderService
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	env := &orderEnv{
		orgID:      uuid.New(),
		products:   memory.NewProductRepository(),
		orders:     memory.NewOrderRepository(),
		sequences:  memory.NewSequenceRepository(),
		events:     memory.NewEventRepository(),
		dispatcher: &recordingDispatcher{},
		publisher:  &recordingPublisher{},
	}
	env.stock = memory.NewStockRepository(env.products)
	env.payments = memory.NewPaymentRepository(env.orders)

	env.event = &entity.Event{
		OrganizationID: env.orgID,
		Name:           "Summer Festival",
		Slug:           "summer-festival",
		Status:         enum.EventStatusActive,
	}
	require.NoError(t, env.events.Create(context.Background(), env.event))

	env.service = service.NewOrderService(
		env.orders, env.products, env.stock, env.sequences, env.events,
		authz.NewGate(), env.publisher, env.dispatcher, zap.NewNop(),
	)
	return env
}

func (env *orderEnv) ctx(capabilities ...string) context.Context {
	ctx := infraRepo.WithOrganization(context.Background(), env.orgID)
	return authz.WithCapabilities(ctx, capabilities)
}

func (env *orderEnv) addProduct(t *testing.T, name string, price int64, tracked bool, quantity int) *entity.Product {
	t.Helper()
	product := &entity.Product{
		OrganizationID:  env.orgID,
		Name:            name,
		Code:            "P-" + uuid.NewString()[:8],
		Price:           price,
		IsActive:        true,
		IsAvailable:     true,
		TracksInventory: tracked,
		Quantity:        quantity,
	}
	require.NoError(t, env.products.Create(context.Background(), product))
	return product
}

func TestOrderService_CreateOrder(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	beer := env.addProduct(t, "Beer", 450, true, 10)
	pretzel := env.addProduct(t, "Pretzel", 300, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items: []service.OrderItemInput{
			{ProductID: beer.ID, Quantity: 2},
			{ProductID: pretzel.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, enum.OrderStatusOpen, order.Status)
	assert.Equal(t, enum.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, int64(1200), order.SubTotal)
	assert.Equal(t, int64(1200), order.Total)
	assert.Equal(t, 1, order.DailyNumber)
	assert.Equal(t, time.Now().Format("20060102")+"-0001", order.OrderNumber)
	assert.Len(t, order.Items, 2)

	// Only the tracked product was reserved
	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Quantity)

	movements := env.stock.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, enum.MovementTypeSale, movements[0].Type)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, 10, movements[0].QuantityBefore)
	assert.Equal(t, 8, movements[0].QuantityAfter)
	require.NotNil(t, movements[0].ReferenceID)
	assert.Equal(t, order.ID, *movements[0].ReferenceID)

	assert.Contains(t, env.publisher.events, messaging.OrderCreatedKey)
	assert.Len(t, env.dispatcher.byType(messaging.TriggerOrderCreated), 1)
}

func TestOrderService_CreateOrder_SequentialNumbers(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	for want := 1; want <= 3; want++ {
		order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
			EventID: env.event.ID,
			Source:  enum.OrderSourceCounter,
			Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, want, order.DailyNumber)
	}
}

func TestOrderService_CreateOrder_ConcurrentNumbersAreUnique(t *testing.T) {
	env := newOrderEnv(t)
	beer := env.addProduct(t, "Beer", 450, false, 0)

	const workers = 20
	numbers := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := env.service.CreateOrder(env.ctx("orders:write"), &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
			})
			if err == nil {
				numbers <- order.DailyNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for number := range numbers {
		assert.False(t, seen[number], "daily number %d handed out twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
}

func TestOrderService_CreateOrder_NumbersScopedPerEvent(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	secondEvent := &entity.Event{
		OrganizationID: env.orgID,
		Name:           "Wine Night",
		Slug:           "wine-night",
		Status:         enum.EventStatusActive,
	}
	require.NoError(t, env.events.Create(context.Background(), secondEvent))

	newOrder := func(eventID uuid.UUID) *entity.Order {
		order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
			EventID: eventID,
			Source:  enum.OrderSourceCounter,
			Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		return order
	}

	date := time.Now().Format("20060102")
	first := newOrder(env.event.ID)
	second := newOrder(secondEvent.ID)
	third := newOrder(env.event.ID)

	// Order numbers count up across the whole organization
	assert.Equal(t, date+"-0001", first.OrderNumber)
	assert.Equal(t, date+"-0002", second.OrderNumber)
	assert.Equal(t, date+"-0003", third.OrderNumber)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)

	// Daily numbers count per event
	assert.Equal(t, 1, first.DailyNumber)
	assert.Equal(t, 1, second.DailyNumber)
	assert.Equal(t, 2, third.DailyNumber)
}

func TestOrderService_CreateOrder_InsufficientStockRollsBack(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	beer := env.addProduct(t, "Beer", 450, true, 10)
	wine := env.addProduct(t, "Wine", 700, true, 1)

	_, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items: []service.OrderItemInput{
			{ProductID: beer.ID, Quantity: 3},
			{ProductID: wine.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock for Wine")

	// The earlier beer reservation was released
	storedBeer, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, storedBeer.Quantity)
	storedWine, err := env.products.GetByID(ctx, wine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedWine.Quantity)

	// The ledger keeps both the reservation and its compensation
	movements := env.stock.Movements()
	require.Len(t, movements, 2)
	assert.Equal(t, enum.MovementTypeSale, movements[0].Type)
	assert.Equal(t, enum.MovementTypeSaleCancelled, movements[1].Type)
	assert.Equal(t, 3, movements[1].Quantity)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	env := newOrderEnv(t)
	beer := env.addProduct(t, "Beer", 450, false, 0)

	closedEvent := &entity.Event{OrganizationID: env.orgID, Name: "Closed", Slug: "closed", Status: enum.EventStatusClosed}
	require.NoError(t, env.events.Create(context.Background(), closedEvent))

	inactive := env.addProduct(t, "Old Lager", 400, false, 0)
	inactive.IsActive = false
	require.NoError(t, env.products.Update(context.Background(), inactive))

	tests := []struct {
		name    string
		ctx     context.Context
		input   *service.CreateOrderInput
		wantErr string
	}{
		{
			name: "missing_capability_on_counter_order",
			ctx:  env.ctx(),
			input: &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
			},
			wantErr: "Missing capability: orders:write",
		},
		{
			name: "empty_order",
			ctx:  env.ctx("orders:write"),
			input: &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
			},
			wantErr: "at least one item",
		},
		{
			name: "closed_event",
			ctx:  env.ctx("orders:write"),
			input: &service.CreateOrderInput{
				EventID: closedEvent.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
			},
			wantErr: "not accepting orders",
		},
		{
			name: "unknown_product",
			ctx:  env.ctx("orders:write"),
			input: &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
			},
			wantErr: "not found",
		},
		{
			name: "inactive_product",
			ctx:  env.ctx("orders:write"),
			input: &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: inactive.ID, Quantity: 1}},
			},
			wantErr: "not available",
		},
		{
			name: "zero_quantity",
			ctx:  env.ctx("orders:write"),
			input: &service.CreateOrderInput{
				EventID: env.event.ID,
				Source:  enum.OrderSourceCounter,
				Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 0}},
			},
			wantErr: "must be positive",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := env.service.CreateOrder(testCase.ctx, testCase.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}
}

func TestOrderService_CreateOrder_SessionSourceSkipsGate(t *testing.T) {
	env := newOrderEnv(t)
	beer := env.addProduct(t, "Beer", 450, false, 0)
	sessionID := uuid.New()

	// No capabilities on the context; a customer session has no staff actor
	order, err := env.service.CreateOrder(env.ctx(), &service.CreateOrderInput{
		EventID:   env.event.ID,
		Source:    enum.OrderSourceOnlineSession,
		SessionID: &sessionID,
		Items:     []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, order.SessionID)
	assert.Equal(t, sessionID, *order.SessionID)
}

func TestOrderService_CreateOrder_ModifierPricing(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	burger := env.addProduct(t, "Burger", 850, false, 0)
	burger.Modifiers = entity.ModifierList{
		{Name: "extra cheese", PriceDelta: 100},
		{Name: "no onions", PriceDelta: 0},
	}
	require.NoError(t, env.products.Update(ctx, burger))

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items: []service.OrderItemInput{
			{ProductID: burger.ID, Quantity: 2, Options: []string{"extra cheese", "no onions"}},
		},
	})
	require.NoError(t, err)

	item := order.Items[0]
	assert.Equal(t, int64(850), item.UnitPrice)
	assert.Equal(t, int64(100), item.OptionsPrice)
	assert.Equal(t, int64(1900), item.TotalPrice)
	assert.Equal(t, int64(1900), order.Total)
}

func TestOrderService_LowStockTrigger(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	beer := env.addProduct(t, "Beer", 450, true, 6)
	beer.QuantityAlert = 5
	require.NoError(t, env.products.Update(ctx, beer))

	// 6 -> 4 crosses the alert level of 5
	_, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, env.dispatcher.byType(messaging.TriggerLowStock), 1)

	// 4 -> 2 stays below, no second trigger
	_, err = env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Len(t, env.dispatcher.byType(messaging.TriggerLowStock), 1)
}

func TestOrderService_AddItem(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	beer := env.addProduct(t, "Beer", 450, true, 10)
	wine := env.addProduct(t, "Wine", 700, true, 3)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := env.service.AddItem(ctx, order.ID, &service.OrderItemInput{
		ProductID: wine.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, int64(1850), updated.Total)
	assert.Greater(t, updated.Version, order.Version)

	storedWine, err := env.products.GetByID(ctx, wine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedWine.Quantity)

	// Oversell on the added line is rejected and reserves nothing
	_, err = env.service.AddItem(ctx, order.ID, &service.OrderItemInput{
		ProductID: wine.ID,
		Quantity:  5,
	})
	require.Error(t, err)
	storedWine, err = env.products.GetByID(ctx, wine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedWine.Quantity)
}

func TestOrderService_UpdateItemQuantity(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, true, 10)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	// Increase reserves the delta
	updated, err := env.service.UpdateItemQuantity(ctx, order.ID, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, int64(2250), updated.Total)

	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)

	// Decrease releases the delta
	updated, err = env.service.UpdateItemQuantity(ctx, order.ID, itemID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Items[0].Quantity)
	assert.Equal(t, int64(450), updated.Total)

	stored, err = env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Quantity)

	// The ledger holds the reservation, the delta and its release
	movements := env.stock.Movements()
	require.Len(t, movements, 3)
	assert.Equal(t, -2, movements[0].Quantity)
	assert.Equal(t, -3, movements[1].Quantity)
	assert.Equal(t, 4, movements[2].Quantity)
	assert.Equal(t, enum.MovementTypeSaleCancelled, movements[2].Type)
}

func TestOrderService_UpdateItemQuantity_Guards(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, true, 3)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	// Oversell on the increase is rejected and reserves nothing
	_, err = env.service.UpdateItemQuantity(ctx, order.ID, itemID, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")
	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Quantity)

	_, err = env.service.UpdateItemQuantity(ctx, order.ID, itemID, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be positive")

	// Once the line leaves pending its quantity is frozen
	_, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusPreparing)
	require.NoError(t, err)
	_, err = env.service.UpdateItemQuantity(ctx, order.ID, itemID, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "while the item is pending")
	assert.Equal(t, 422, apperror.GetAppError(err).Code)
}

func TestOrderService_UpdateItemStatus(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	// Skipping a step is invalid input, not a concurrency race
	_, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusReady)
	require.Error(t, err)
	assert.False(t, apperror.IsConflict(err))
	assert.Equal(t, 422, apperror.GetAppError(err).Code)

	// Cancellation is not reachable through the status update
	_, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusCancelled)
	require.Error(t, err)

	order, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusInProgress, order.Status)
	require.NotNil(t, order.Items[0].StartedAt)

	order, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusReady)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusInProgress, order.Status)

	order, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusReady, order.Status)
	require.NotNil(t, order.ReadyAt)

	// Delivered is terminal
	_, err = env.service.UpdateItemStatus(ctx, order.ID, itemID, enum.OrderItemStatusDelivered)
	require.Error(t, err)
}

func TestOrderService_CancelItem(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write", "orders:cancel")

	beer := env.addProduct(t, "Beer", 450, true, 10)
	wine := env.addProduct(t, "Wine", 700, true, 5)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items: []service.OrderItemInput{
			{ProductID: beer.ID, Quantity: 2},
			{ProductID: wine.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	updated, err := env.service.CancelItem(ctx, order.ID, order.Items[0].ID, nil)
	require.NoError(t, err)

	cancelled := updated.ItemByID(order.Items[0].ID)
	require.NotNil(t, cancelled)
	assert.Equal(t, enum.OrderItemStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Cancelled lines leave the totals
	assert.Equal(t, int64(700), updated.Total)

	// Stock was restored
	storedBeer, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, storedBeer.Quantity)
}

func TestOrderService_CancelItem_PaidItemBlocked(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write", "orders:cancel", "payments:capture")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	payments := service.NewPaymentService(env.payments, env.orders, authz.NewGate(), env.publisher, env.dispatcher, zap.NewNop())
	_, err = payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{
		Amount: 450,
		Method: "cash",
		Allocations: []service.AllocationInput{
			{ItemID: order.Items[0].ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = env.service.CancelItem(ctx, order.ID, order.Items[0].ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Paid items cannot be cancelled")
	assert.Equal(t, 422, apperror.GetAppError(err).Code)
}

func TestOrderService_CancelOrder(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write", "orders:cancel")

	beer := env.addProduct(t, "Beer", 450, true, 10)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 4}},
	})
	require.NoError(t, err)

	reason := "customer left"
	cancelled, err := env.service.CancelOrder(ctx, order.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, enum.OrderItemStatusCancelled, cancelled.Items[0].Status)

	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)

	// A closed order cannot be cancelled again
	_, err = env.service.CancelOrder(ctx, order.ID, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestOrderService_CancelOrder_PartlyPaidKeepsPayments(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write", "orders:cancel", "payments:capture")
	beer := env.addProduct(t, "Beer", 450, true, 10)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	payments := service.NewPaymentService(env.payments, env.orders, authz.NewGate(), env.publisher, env.dispatcher, zap.NewNop())
	_, err = payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 450, Method: "cash"})
	require.NoError(t, err)

	cancelled, err := env.service.CancelOrder(ctx, order.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCancelled, cancelled.Status)

	// Stock comes back, the captured payment stays for the refund flow
	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)

	captured, err := env.payments.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, int64(450), captured[0].Amount)

	// A payment arriving after the cancellation is turned away
	_, err = payments.CapturePayment(ctx, order.ID, &service.CapturePaymentInput{Amount: 450, Method: "cash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cancelled orders")
}

func TestOrderService_CompleteOrder(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// An unpaid order cannot be completed
	_, err = env.service.CompleteOrder(ctx, order.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fully paid")
	assert.Equal(t, 422, apperror.GetAppError(err).Code)

	// Mark the order settled without the capture path closing it
	paid, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	paid.PaidAmount = paid.Total
	paid.PaymentStatus = enum.PaymentStatusPaid
	require.NoError(t, env.orders.Update(ctx, paid))

	completed, err := env.service.CompleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Len(t, env.dispatcher.byType(messaging.TriggerOrderCompleted), 1)

	// Completed is terminal
	_, err = env.service.CompleteOrder(ctx, order.ID)
	require.Error(t, err)
	assert.Equal(t, 422, apperror.GetAppError(err).Code)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")
	beer := env.addProduct(t, "Beer", 450, false, 0)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	discount := int64(100)
	reason := "regulars"
	tip := int64(50)
	updated, err := env.service.UpdateOrder(ctx, order.ID, &service.UpdateOrderInput{
		DiscountAmount: &discount,
		DiscountReason: &reason,
		TipAmount:      &tip,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(900), updated.SubTotal)
	assert.Equal(t, int64(850), updated.Total)

	// Discount above the subtotal is rejected
	tooMuch := int64(5000)
	_, err = env.service.UpdateOrder(ctx, order.ID, &service.UpdateOrderInput{
		DiscountAmount: &tooMuch,
		DiscountReason: &reason,
	})
	require.Error(t, err)

	// Discount without a reason is rejected
	_, err = env.service.UpdateOrder(ctx, order.ID, &service.UpdateOrderInput{
		DiscountAmount: &discount,
	})
	require.Error(t, err)
}

func TestOrderService_UpdateConflictReleasesReservation(t *testing.T) {
	env := newOrderEnv(t)
	ctx := env.ctx("orders:write")

	beer := env.addProduct(t, "Beer", 450, true, 10)
	wine := env.addProduct(t, "Wine", 700, true, 5)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: beer.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// Another writer bumps the version behind our back
	concurrent, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NoError(t, env.orders.Update(ctx, concurrent))

	stale := *order
	stale.Items = append([]entity.OrderItem(nil), order.Items...)
	// AddItem re-reads the order, so force the conflict through the repo
	// directly: reserve, then fail the guarded write.
	err = env.orders.Update(ctx, &stale)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Service-level retry path: a fresh read succeeds
	updated, err := env.service.AddItem(ctx, order.ID, &service.OrderItemInput{ProductID: wine.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
}
