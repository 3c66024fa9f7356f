package request

// ModifierRequest is a selectable product option. PriceDelta is a decimal
// currency value.
type ModifierRequest struct {
	Name       string  `json:"name" binding:"required"`
	PriceDelta float64 `json:"price_delta"`
}

// CreateProductRequest represents the create product request body. Price is
// a decimal currency value.
type CreateProductRequest struct {
	Name            string            `json:"name" binding:"required"`
	EventID         *string           `json:"event_id" binding:"omitempty,uuid"`
	CategoryID      *string           `json:"category_id" binding:"omitempty,uuid"`
	Price           float64           `json:"price" binding:"min=0"`
	TaxRate         float64           `json:"tax_rate" binding:"min=0,max=100"`
	TracksInventory bool              `json:"tracks_inventory"`
	InitialQuantity int               `json:"initial_quantity" binding:"min=0"`
	QuantityAlert   int               `json:"quantity_alert" binding:"min=0"`
	Modifiers       []ModifierRequest `json:"modifiers" binding:"dive"`
}

// UpdateProductRequest represents the update product request body; omitted
// fields are left unchanged
type UpdateProductRequest struct {
	Name          *string            `json:"name"`
	CategoryID    *string            `json:"category_id" binding:"omitempty,uuid"`
	Price         *float64           `json:"price" binding:"omitempty,min=0"`
	TaxRate       *float64           `json:"tax_rate" binding:"omitempty,min=0,max=100"`
	IsActive      *bool              `json:"is_active"`
	IsAvailable   *bool              `json:"is_available"`
	QuantityAlert *int               `json:"quantity_alert" binding:"omitempty,min=0"`
	Modifiers     *[]ModifierRequest `json:"modifiers" binding:"omitempty,dive"`
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order" binding:"min=0"`
}
