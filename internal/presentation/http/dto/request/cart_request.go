package request

// StartSessionRequest represents the open session request body
type StartSessionRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

// AddCartItemRequest represents the add-to-cart request body
type AddCartItemRequest struct {
	ProductID string   `json:"product_id" binding:"required,uuid"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Options   []string `json:"options"`
	Notes     *string  `json:"notes"`
}
