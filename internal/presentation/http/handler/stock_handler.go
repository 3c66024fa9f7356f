package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
)

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Adjust handles POST /api/v1/products/:id/stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	movement, err := h.stockService.AdjustStock(c.Request.Context(), productID, &service.AdjustStockInput{
		Delta:  req.Delta,
		Type:   req.Type,
		Reason: req.Reason,
		UserID: GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock adjusted", movement)
}

// Count handles POST /api/v1/products/:id/stock/count
func (h *StockHandler) Count(c *gin.Context) {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.InventoryCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	movement, err := h.stockService.SetInventoryCount(c.Request.Context(), productID, req.Counted, GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if movement == nil {
		response.OK(c, "Count matches the cached quantity", nil)
		return
	}
	response.Created(c, "Inventory count applied", movement)
}

// Movements handles GET /api/v1/products/:id/stock/movements
func (h *StockHandler) Movements(c *gin.Context) {
	productID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.stockService.ListMovements(c.Request.Context(), productID, parsePagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Movements retrieved", result)
}

// LowStock handles GET /api/v1/stock/low
func (h *StockHandler) LowStock(c *gin.Context) {
	products, err := h.stockService.GetLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved", products)
}
