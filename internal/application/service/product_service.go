package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
	"github.com/sokoni/eventpos-api/pkg/pagination"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// ProductService manages the sellable catalog. Price edits never touch
// existing orders; those carry their own snapshots.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	stockService *StockService
	gate         CapabilityGate
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	stockService *StockService,
	gate CapabilityGate,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stockService: stockService,
		gate:         gate,
	}
}

// CreateProductInput represents the create product input. Price is in cents.
type CreateProductInput struct {
	Name            string
	EventID         *uuid.UUID
	CategoryID      *uuid.UUID
	Price           int64
	TaxRate         float64
	TracksInventory bool
	InitialQuantity int
	QuantityAlert   int
	Modifiers       entity.ModifierList
	UserID          *uuid.UUID
}

// CreateProduct creates a catalog entry; for tracked products the initial
// quantity is written as the opening ledger row
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	if err := s.gate.Require(ctx, CapProductsWrite); err != nil {
		return nil, err
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if input.Name == "" {
		return nil, apperror.NewValidationError("Product name is required")
	}
	if input.Price < 0 {
		return nil, apperror.NewValidationError("Product price cannot be negative")
	}
	if input.TaxRate < 0 || input.TaxRate > 100 {
		return nil, apperror.NewValidationError("Tax rate must be between 0 and 100")
	}
	if input.InitialQuantity < 0 {
		return nil, apperror.NewValidationError("Initial quantity cannot be negative")
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	product := &entity.Product{
		OrganizationID:  orgID,
		EventID:         input.EventID,
		CategoryID:      input.CategoryID,
		Name:            input.Name,
		Code:            utils.GenerateProductCode(),
		Price:           input.Price,
		TaxRate:         input.TaxRate,
		IsActive:        true,
		IsAvailable:     true,
		TracksInventory: input.TracksInventory,
		QuantityAlert:   input.QuantityAlert,
		Modifiers:       input.Modifiers,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if product.TracksInventory && input.InitialQuantity > 0 {
		if err := s.stockService.InitializeStock(ctx, product, input.InitialQuantity, input.UserID); err != nil {
			return nil, err
		}
		product.Quantity = input.InitialQuantity
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input; nil fields are
// left unchanged. Quantity is deliberately absent: it only moves through
// the stock ledger.
type UpdateProductInput struct {
	Name          *string
	CategoryID    *uuid.UUID
	Price         *int64
	TaxRate       *float64
	IsActive      *bool
	IsAvailable   *bool
	QuantityAlert *int
	Modifiers     *entity.ModifierList
}

// UpdateProduct applies a partial update to a catalog entry
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	if err := s.gate.Require(ctx, CapProductsWrite); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperror.NewValidationError("Product name is required")
		}
		product.Name = *input.Name
	}
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
		product.CategoryID = input.CategoryID
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperror.NewValidationError("Product price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.TaxRate != nil {
		if *input.TaxRate < 0 || *input.TaxRate > 100 {
			return nil, apperror.NewValidationError("Tax rate must be between 0 and 100")
		}
		product.TaxRate = *input.TaxRate
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}
	if input.QuantityAlert != nil {
		product.QuantityAlert = *input.QuantityAlert
	}
	if input.Modifiers != nil {
		product.Modifiers = *input.Modifiers
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a catalog entry; historical orders keep their
// snapshots
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.gate.Require(ctx, CapProductsWrite); err != nil {
		return err
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// CreateCategory creates a product category
func (s *ProductService) CreateCategory(ctx context.Context, name string, sortOrder int) (*entity.Category, error) {
	if err := s.gate.Require(ctx, CapProductsWrite); err != nil {
		return nil, err
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if name == "" {
		return nil, apperror.NewValidationError("Category name is required")
	}

	category := &entity.Category{
		OrganizationID: orgID,
		Name:           name,
		Slug:           utils.Slugify(name),
		SortOrder:      sortOrder,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists the organization's categories in sort order
func (s *ProductService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx)
}
