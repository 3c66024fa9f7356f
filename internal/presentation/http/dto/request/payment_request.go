package request

// AllocationRequest names an order item and the quantity a payment covers
type AllocationRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CapturePaymentRequest represents the capture payment request body. Amounts
// are decimal currency values.
type CapturePaymentRequest struct {
	Amount       float64             `json:"amount" binding:"required,gt=0"`
	TipAmount    float64             `json:"tip_amount" binding:"min=0"`
	Method       string              `json:"method" binding:"required"`
	Provider     *string             `json:"provider"`
	ProviderTxID *string             `json:"provider_tx_id"`
	Allocations  []AllocationRequest `json:"allocations" binding:"dive"`
}
