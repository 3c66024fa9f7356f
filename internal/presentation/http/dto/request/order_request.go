package request

import (
	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// OrderItemRequest represents one requested line in an order
type OrderItemRequest struct {
	ProductID string   `json:"product_id" binding:"required,uuid"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Options   []string `json:"options"`
	Notes     *string  `json:"notes"`
}

// CreateOrderRequest represents the create order request body. The source is
// always counter here; online and QR orders arrive through the session
// endpoints.
type CreateOrderRequest struct {
	EventID  string             `json:"event_id" binding:"required,uuid"`
	Priority int                `json:"priority" binding:"min=0"`
	Notes    *string            `json:"notes"`
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest represents the update order request body. Amounts are
// decimal currency values.
type UpdateOrderRequest struct {
	Priority       *int     `json:"priority"`
	Notes          *string  `json:"notes"`
	TipAmount      *float64 `json:"tip_amount"`
	DiscountAmount *float64 `json:"discount_amount"`
	DiscountReason *string  `json:"discount_reason"`
}

// AddOrderItemRequest represents the add item request body
type AddOrderItemRequest struct {
	ProductID string   `json:"product_id" binding:"required,uuid"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Options   []string `json:"options"`
	Notes     *string  `json:"notes"`
}

// UpdateItemQuantityRequest represents the item quantity change request body
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// UpdateItemStatusRequest represents the item status transition request body
type UpdateItemStatusRequest struct {
	Status enum.OrderItemStatus `json:"status" binding:"required"`
}

// CancelRequest represents an order or item cancellation request body
type CancelRequest struct {
	Reason *string `json:"reason"`
}
