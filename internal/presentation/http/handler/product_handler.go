package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CreateProductInput{
		Name:            req.Name,
		EventID:         optionalUUID(req.EventID),
		CategoryID:      optionalUUID(req.CategoryID),
		Price:           utils.Cents(req.Price),
		TaxRate:         req.TaxRate,
		TracksInventory: req.TracksInventory,
		InitialQuantity: req.InitialQuantity,
		QuantityAlert:   req.QuantityAlert,
		Modifiers:       toModifiers(req.Modifiers),
		UserID:          GetUserID(c),
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created", product)
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved", product)
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	params := &repository.ProductFilterParams{
		Pagination: parsePagination(c),
		Search:     c.Query("search"),
		LowStock:   c.Query("low_stock") == "true",
	}
	if categoryStr := c.Query("category_id"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			response.BadRequest(c, "Invalid category_id filter")
			return
		}
		params.CategoryID = &categoryID
	}
	if eventStr := c.Query("event_id"); eventStr != "" {
		eventID, err := uuid.Parse(eventStr)
		if err != nil {
			response.BadRequest(c, "Invalid event_id filter")
			return
		}
		params.EventID = &eventID
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved", result)
}

// Update handles PATCH /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateProductInput{
		Name:          req.Name,
		CategoryID:    optionalUUID(req.CategoryID),
		TaxRate:       req.TaxRate,
		IsActive:      req.IsActive,
		IsAvailable:   req.IsAvailable,
		QuantityAlert: req.QuantityAlert,
	}
	if req.Price != nil {
		price := utils.Cents(*req.Price)
		input.Price = &price
	}
	if req.Modifiers != nil {
		modifiers := toModifiers(*req.Modifiers)
		input.Modifiers = &modifiers
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated", product)
}

// Delete handles DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CreateCategory handles POST /api/v1/categories
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req request.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.productService.CreateCategory(c.Request.Context(), req.Name, req.SortOrder)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created", category)
}

// ListCategories handles GET /api/v1/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved", categories)
}

func toModifiers(reqs []request.ModifierRequest) entity.ModifierList {
	var modifiers entity.ModifierList
	for _, m := range reqs {
		modifiers = append(modifiers, entity.Modifier{
			Name:       m.Name,
			PriceDelta: utils.Cents(m.PriceDelta),
		})
	}
	return modifiers
}
