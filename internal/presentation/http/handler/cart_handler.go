package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
)

// CartHandler handles the public online-ordering session endpoints
type CartHandler struct {
	cartService      *service.CartService
	ingestionService *service.IngestionService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService, ingestionService *service.IngestionService) *CartHandler {
	return &CartHandler{
		cartService:      cartService,
		ingestionService: ingestionService,
	}
}

// StartSession handles POST /public/:org/sessions
func (h *CartHandler) StartSession(c *gin.Context) {
	var req request.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "Invalid event_id")
		return
	}

	source := enum.OrderSourceOnlineSession
	if c.Query("source") == "qr_order" {
		source = enum.OrderSourceQROrder
	}

	cart, err := h.cartService.StartSession(c.Request.Context(), eventID, source)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Session started", cart)
}

// GetCart handles GET /public/:org/sessions/:session_id/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart retrieved", cart)
}

// AddItem handles POST /public/:org/sessions/:session_id/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product_id")
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), sessionID, entity.CartItem{
		ProductID: productID,
		Quantity:  req.Quantity,
		Options:   req.Options,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", cart)
}

// RemoveItem handles DELETE /public/:org/sessions/:session_id/cart/items/:index
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid cart item index")
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), sessionID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", cart)
}

// Checkout handles POST /public/:org/sessions/:session_id/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	order, err := h.ingestionService.Checkout(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order submitted", order)
}

// Abandon handles DELETE /public/:org/sessions/:session_id
func (h *CartHandler) Abandon(c *gin.Context) {
	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	if err := h.cartService.Abandon(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
