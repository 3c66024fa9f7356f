package request

import (
	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// AdjustStockRequest represents a manual stock adjustment request body
type AdjustStockRequest struct {
	Delta  int               `json:"delta" binding:"required"`
	Type   enum.MovementType `json:"type" binding:"required"`
	Reason *string           `json:"reason"`
}

// InventoryCountRequest represents a physical count reconciliation request
// body
type InventoryCountRequest struct {
	Counted int `json:"counted" binding:"min=0"`
}
