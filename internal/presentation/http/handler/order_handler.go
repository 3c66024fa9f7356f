package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// OrderHandler handles staff-facing order endpoints
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "Invalid event_id")
		return
	}

	input := &service.CreateOrderInput{
		EventID:  eventID,
		Source:   enum.OrderSourceCounter,
		UserID:   GetUserID(c),
		DeviceID: GetDeviceID(c),
		Priority: req.Priority,
		Notes:    req.Notes,
	}
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product_id")
			return
		}
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Options:   item.Options,
			Notes:     item.Notes,
		})
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created", order)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved", order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	params := &repository.OrderFilterParams{
		Pagination: parsePagination(c),
		Search:     c.Query("search"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		var status enum.OrderStatus
		if err := status.UnmarshalJSON([]byte(`"` + statusStr + `"`)); err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}
	if paymentStr := c.Query("payment_status"); paymentStr != "" {
		var paymentStatus enum.PaymentStatus
		if err := paymentStatus.UnmarshalJSON([]byte(`"` + paymentStr + `"`)); err != nil {
			response.BadRequest(c, "Invalid payment_status filter")
			return
		}
		params.PaymentStatus = &paymentStatus
	}
	if eventStr := c.Query("event_id"); eventStr != "" {
		eventID, err := uuid.Parse(eventStr)
		if err != nil {
			response.BadRequest(c, "Invalid event_id filter")
			return
		}
		params.EventID = &eventID
	}
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			response.BadRequest(c, "Invalid from filter")
			return
		}
		params.StartDate = &from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			response.BadRequest(c, "Invalid to filter")
			return
		}
		params.EndDate = &to
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved", result)
}

// Update handles PATCH /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateOrderInput{
		Priority:       req.Priority,
		Notes:          req.Notes,
		DiscountReason: req.DiscountReason,
	}
	if req.TipAmount != nil {
		tip := utils.Cents(*req.TipAmount)
		input.TipAmount = &tip
	}
	if req.DiscountAmount != nil {
		discount := utils.Cents(*req.DiscountAmount)
		input.DiscountAmount = &discount
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order updated", order)
}

// AddItem handles POST /api/v1/orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product_id")
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), id, &service.OrderItemInput{
		ProductID: productID,
		Quantity:  req.Quantity,
		Options:   req.Options,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added", order)
}

// UpdateItemQuantity handles PATCH /api/v1/orders/:id/items/:item_id/quantity
func (h *OrderHandler) UpdateItemQuantity(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}

	var req request.UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateItemQuantity(c.Request.Context(), id, itemID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item quantity updated", order)
}

// UpdateItemStatus handles PATCH /api/v1/orders/:id/items/:item_id/status
func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}

	var req request.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateItemStatus(c.Request.Context(), id, itemID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item status updated", order)
}

// CancelItem handles POST /api/v1/orders/:id/items/:item_id/cancel
func (h *OrderHandler) CancelItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}

	var req request.CancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.CancelItem(c.Request.Context(), id, itemID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item cancelled", order)
}

// Complete handles POST /api/v1/orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CompleteOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order completed", order)
}

// Cancel handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.CancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.CancelOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled", order)
}
