package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// StockMovement is one immutable row of the append-only inventory ledger.
// The product's cached quantity is a projection of these rows; corrections
// are new rows, never edits.
type StockMovement struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"organization_id"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	EventID        *uuid.UUID        `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Quantity       int               `gorm:"not null" json:"quantity"` // signed delta
	QuantityBefore int               `gorm:"not null" json:"quantity_before"`
	QuantityAfter  int               `gorm:"not null" json:"quantity_after"`
	Type           enum.MovementType `gorm:"not null" json:"type"`
	ReferenceType  *string           `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID        `gorm:"type:uuid" json:"reference_id,omitempty"`
	Reason         *string           `gorm:"type:text" json:"reason,omitempty"`
	UserID         *uuid.UUID        `gorm:"type:uuid" json:"user_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new stock movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}

// MovementReference identifies the document a movement belongs to,
// e.g. {"order", orderID} for a sale.
type MovementReference struct {
	Type string
	ID   uuid.UUID
}

// OrderReference builds a movement reference pointing at an order
func OrderReference(orderID uuid.UUID) *MovementReference {
	return &MovementReference{Type: "order", ID: orderID}
}
