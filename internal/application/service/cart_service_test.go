package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/infrastructure/cache"
)

type cartEnv struct {
	*orderEnv
	redis     *miniredis.Miniredis
	store     *cache.CartStore
	carts     *service.CartService
	ingestion *service.IngestionService
}

func newCartEnv(t *testing.T) *cartEnv {
	t.Helper()
	env := newOrderEnv(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewCartStore(client, 30*time.Minute)

	carts := service.NewCartService(store, env.events, env.products, zap.NewNop())
	return &cartEnv{
		orderEnv:  env,
		redis:     mr,
		store:     store,
		carts:     carts,
		ingestion: service.NewIngestionService(env.service, carts, store, zap.NewNop()),
	}
}

func TestCartService_StartSession(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)
	assert.NotEqual(t, cart.SessionID.String(), "")
	assert.Equal(t, env.event.ID, cart.EventID)
	assert.True(t, cart.IsEmpty())

	// The cart is retrievable under its session
	stored, err := env.carts.GetCart(ctx, cart.SessionID)
	require.NoError(t, err)
	assert.Equal(t, cart.SessionID, stored.SessionID)
}

func TestCartService_StartSession_Rejections(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()

	// Counter orders never go through sessions
	_, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceCounter)
	require.Error(t, err)

	draft := &entity.Event{OrganizationID: env.orgID, Name: "Draft", Slug: "draft", Status: enum.EventStatusDraft}
	require.NoError(t, env.events.Create(ctx, draft))
	_, err = env.carts.StartSession(ctx, draft.ID, enum.OrderSourceQROrder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accepting orders")
}

func TestCartService_AddAndRemoveItems(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()
	beer := env.addProduct(t, "Beer", 450, false, 0)
	wine := env.addProduct(t, "Wine", 700, false, 0)

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)

	cart, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: beer.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: wine.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	// Same product and options merge into one line
	cart, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: beer.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	cart, err = env.carts.RemoveItem(ctx, cart.SessionID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, beer.ID, cart.Items[0].ProductID)

	_, err = env.carts.RemoveItem(ctx, cart.SessionID, 5)
	require.Error(t, err)
}

func TestCartService_AddItem_UnavailableProduct(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()

	soldOut := env.addProduct(t, "Sold Out", 450, false, 0)
	soldOut.IsAvailable = false
	require.NoError(t, env.products.Update(ctx, soldOut))

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)

	_, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: soldOut.ID, Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestCartService_SessionExpiry(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)

	env.redis.FastForward(31 * time.Minute)

	_, err = env.carts.GetCart(ctx, cart.SessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Session not found")
}

func TestCartService_Abandon(t *testing.T) {
	env := newCartEnv(t)
	ctx := context.Background()

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)
	require.NoError(t, env.carts.Abandon(ctx, cart.SessionID))

	_, err = env.carts.GetCart(ctx, cart.SessionID)
	require.Error(t, err)
}

func TestIngestionService_Checkout(t *testing.T) {
	env := newCartEnv(t)
	// Checkout runs without staff capabilities, only the organization scope
	ctx := env.ctx()
	beer := env.addProduct(t, "Beer", 450, true, 10)

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceQROrder)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: beer.ID, Quantity: 2})
	require.NoError(t, err)

	order, err := env.ingestion.Checkout(ctx, cart.SessionID)
	require.NoError(t, err)
	assert.Equal(t, enum.OrderSourceQROrder, order.Source)
	require.NotNil(t, order.SessionID)
	assert.Equal(t, cart.SessionID, *order.SessionID)
	assert.Equal(t, int64(900), order.Total)

	// Stock was reserved at submit time, not when the cart was filled
	stored, err := env.products.GetByID(ctx, beer.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Quantity)

	// The cart is gone after checkout
	_, err = env.carts.GetCart(ctx, cart.SessionID)
	require.Error(t, err)
}

func TestIngestionService_Checkout_EmptyCart(t *testing.T) {
	env := newCartEnv(t)
	ctx := env.ctx()

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)

	_, err = env.ingestion.Checkout(ctx, cart.SessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cart is empty")
}

func TestIngestionService_Checkout_InsufficientStockKeepsCart(t *testing.T) {
	env := newCartEnv(t)
	ctx := env.ctx()
	beer := env.addProduct(t, "Beer", 450, true, 1)

	cart, err := env.carts.StartSession(ctx, env.event.ID, enum.OrderSourceOnlineSession)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, cart.SessionID, entity.CartItem{ProductID: beer.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = env.ingestion.Checkout(ctx, cart.SessionID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")

	// A failed submission leaves the cart intact for another attempt
	stored, err := env.carts.GetCart(ctx, cart.SessionID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}
