package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// Payment represents money captured against an order. Captured payments are
// immutable; a refund is a new compensating record, never an edit.
type Payment struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"organization_id"`
	OrderID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"order_id"`
	Amount         int64             `gorm:"not null" json:"-"`  // Stored in cents, excluded from JSON
	TipAmount      int64             `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Method         string            `gorm:"size:50;not null" json:"method"`
	Provider       *string           `gorm:"size:100" json:"provider,omitempty"`
	ProviderTxID   *string           `gorm:"size:255" json:"provider_tx_id,omitempty"`
	Status         enum.PaymentState `gorm:"default:0" json:"status"`
	Metadata       *string           `gorm:"type:jsonb" json:"metadata,omitempty"`
	UserID         *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	DeviceID       *uuid.UUID        `gorm:"type:uuid" json:"device_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Relationships
	Order       Order              `gorm:"foreignKey:OrderID" json:"-"`
	Allocations []OrderItemPayment `gorm:"foreignKey:PaymentID" json:"allocations,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount    float64 `json:"amount"`
		TipAmount float64 `json:"tip_amount"`
	}{
		Alias:     Alias(p),
		Amount:    float64(p.Amount) / 100,
		TipAmount: float64(p.TipAmount) / 100,
	})
}

// OrderItemPayment attributes part of a payment to one order item. For every
// item the sum of allocated quantities equals its paid quantity.
type OrderItemPayment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	OrderItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Amount      int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Payment   Payment   `gorm:"foreignKey:PaymentID" json:"-"`
	OrderItem OrderItem `gorm:"foreignKey:OrderItemID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new allocation
func (a *OrderItemPayment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItemPayment model
func (OrderItemPayment) TableName() string {
	return "order_item_payments"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (a OrderItemPayment) MarshalJSON() ([]byte, error) {
	type Alias OrderItemPayment
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(a),
		Amount: float64(a.Amount) / 100,
	})
}
