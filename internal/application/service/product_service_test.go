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
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
	"github.com/sokoni/eventpos-api/internal/infrastructure/memory"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

type productEnv struct {
	*orderEnv
	categories *memory.CategoryRepository
	catalog    *service.ProductService
}

func newProductEnv(t *testing.T) *productEnv {
	t.Helper()
	env := newOrderEnv(t)
	categories := memory.NewCategoryRepository()
	stockService := service.NewStockService(env.stock, env.products, authz.NewGate(), env.dispatcher, zap.NewNop())
	return &productEnv{
		orderEnv:   env,
		categories: categories,
		catalog:    service.NewProductService(env.products, categories, stockService, authz.NewGate()),
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write")

	product, err := env.catalog.CreateProduct(ctx, &service.CreateProductInput{
		Name:            "Helles 0.5l",
		Price:           450,
		TaxRate:         19,
		TracksInventory: true,
		InitialQuantity: 120,
		QuantityAlert:   20,
		Modifiers:       entity.ModifierList{{Name: "shandy", PriceDelta: 0}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.Code)
	assert.True(t, product.IsActive)
	assert.Equal(t, 120, product.Quantity)

	// The opening balance is a ledger row, not a bare quantity write
	movements := env.stock.Movements()
	require.Len(t, movements, 1)
	assert.Equal(t, enum.MovementTypeInitial, movements[0].Type)
	assert.Equal(t, 120, movements[0].Quantity)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write")

	tests := []struct {
		name    string
		input   *service.CreateProductInput
		wantErr string
	}{
		{"empty_name", &service.CreateProductInput{Price: 100}, "name is required"},
		{"negative_price", &service.CreateProductInput{Name: "X", Price: -1}, "cannot be negative"},
		{"bad_tax_rate", &service.CreateProductInput{Name: "X", TaxRate: 120}, "between 0 and 100"},
		{"negative_initial", &service.CreateProductInput{Name: "X", InitialQuantity: -5}, "cannot be negative"},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := env.catalog.CreateProduct(ctx, testCase.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}

	unknownCategory := uuid.New()
	_, err := env.catalog.CreateProduct(ctx, &service.CreateProductInput{
		Name:       "Orphan",
		CategoryID: &unknownCategory,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Category not found")
}

func TestProductService_UpdateProduct(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write")

	product, err := env.catalog.CreateProduct(ctx, &service.CreateProductInput{Name: "Helles", Price: 450})
	require.NoError(t, err)

	newPrice := int64(500)
	unavailable := false
	updated, err := env.catalog.UpdateProduct(ctx, product.ID, &service.UpdateProductInput{
		Price:       &newPrice,
		IsAvailable: &unavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), updated.Price)
	assert.False(t, updated.IsAvailable)

	empty := ""
	_, err = env.catalog.UpdateProduct(ctx, product.ID, &service.UpdateProductInput{Name: &empty})
	require.Error(t, err)

	negative := int64(-1)
	_, err = env.catalog.UpdateProduct(ctx, product.ID, &service.UpdateProductInput{Price: &negative})
	require.Error(t, err)
}

func TestProductService_PriceEditLeavesOrderSnapshots(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write", "orders:write")

	product, err := env.catalog.CreateProduct(ctx, &service.CreateProductInput{Name: "Helles", Price: 450})
	require.NoError(t, err)

	order, err := env.service.CreateOrder(ctx, &service.CreateOrderInput{
		EventID: env.event.ID,
		Source:  enum.OrderSourceCounter,
		Items:   []service.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	newPrice := int64(600)
	_, err = env.catalog.UpdateProduct(ctx, product.ID, &service.UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	stored, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), stored.Items[0].UnitPrice)
	assert.Equal(t, int64(450), stored.Total)
}

func TestProductService_Categories(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write")

	bar, err := env.catalog.CreateCategory(ctx, "Bar Drinks", 2)
	require.NoError(t, err)
	assert.Equal(t, "bar-drinks", bar.Slug)

	_, err = env.catalog.CreateCategory(ctx, "Food", 1)
	require.NoError(t, err)

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)

	_, err = env.catalog.CreateCategory(ctx, "", 0)
	require.Error(t, err)
}

func TestProductService_ListAndDelete(t *testing.T) {
	env := newProductEnv(t)
	ctx := env.ctx("products:write")

	helles, err := env.catalog.CreateProduct(ctx, &service.CreateProductInput{Name: "Helles", Price: 450})
	require.NoError(t, err)
	_, err = env.catalog.CreateProduct(ctx, &service.CreateProductInput{Name: "Weizen", Price: 480})
	require.NoError(t, err)

	result, err := env.catalog.ListProducts(ctx, &repository.ProductFilterParams{
		Pagination: pagination.DefaultPagination(),
		Search:     "helles",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	require.NoError(t, env.catalog.DeleteProduct(ctx, helles.ID))
	_, err = env.catalog.GetProduct(ctx, helles.ID)
	require.Error(t, err)
}
