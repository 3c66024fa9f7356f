package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// Order represents a customer's purchase request within one organization and
// sales context. Derived fields (totals, payment status) are always recomputed
// from scratch, never patched incrementally, and every mutation goes through
// an optimistic version check.
type Order struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_org_number" json:"organization_id"`
	EventID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"event_id"`
	OrderNumber    string             `gorm:"size:100;not null;uniqueIndex:idx_orders_org_number" json:"order_number"`
	DailyNumber    int                `gorm:"default:0" json:"daily_number"`
	Status         enum.OrderStatus   `gorm:"default:0" json:"status"`
	PaymentStatus  enum.PaymentStatus `gorm:"default:0" json:"payment_status"`
	Source         enum.OrderSource   `gorm:"default:0" json:"source"`
	SubTotal       int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxTotal       int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total          int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	PaidAmount     int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TipAmount      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	DiscountAmount int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	DiscountReason *string            `gorm:"size:255" json:"discount_reason,omitempty"`
	Priority       int                `gorm:"default:0" json:"priority"`
	Notes          *string            `gorm:"type:text" json:"notes,omitempty"`
	UserID         *uuid.UUID         `gorm:"type:uuid;index" json:"user_id,omitempty"`
	DeviceID       *uuid.UUID         `gorm:"type:uuid;index" json:"device_id,omitempty"`
	SessionID      *uuid.UUID         `gorm:"type:uuid;index" json:"session_id,omitempty"`
	ReadyAt        *time.Time         `json:"ready_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	Version        int                `gorm:"default:1" json:"version"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Event        Event        `gorm:"foreignKey:EventID" json:"-"`
	Items        []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubTotal       float64 `json:"sub_total"`
		TaxTotal       float64 `json:"tax_total"`
		Total          float64 `json:"total"`
		PaidAmount     float64 `json:"paid_amount"`
		TipAmount      float64 `json:"tip_amount"`
		DiscountAmount float64 `json:"discount_amount"`
	}{
		Alias:          Alias(o),
		SubTotal:       float64(o.SubTotal) / 100,
		TaxTotal:       float64(o.TaxTotal) / 100,
		Total:          float64(o.Total) / 100,
		PaidAmount:     float64(o.PaidAmount) / 100,
		TipAmount:      float64(o.TipAmount) / 100,
		DiscountAmount: float64(o.DiscountAmount) / 100,
	})
}

// RecomputeTotals recalculates subtotal, tax total and total from the current
// items. It is idempotent and always works from scratch so repeated runs on an
// unchanged order produce identical results.
func (o *Order) RecomputeTotals() {
	var subTotal int64
	var taxTotal int64
	for i := range o.Items {
		item := &o.Items[i]
		if item.Status == enum.OrderItemStatusCancelled {
			continue
		}
		subTotal += item.TotalPrice
		taxTotal += int64(math.Round(float64(item.TotalPrice) * item.TaxRate / 100))
	}
	o.SubTotal = subTotal
	o.TaxTotal = taxTotal
	o.Total = subTotal - o.DiscountAmount + o.TipAmount
}

// RecomputePaymentStatus derives the payment status from the paid amount
func (o *Order) RecomputePaymentStatus() {
	switch {
	case o.PaidAmount <= 0:
		o.PaymentStatus = enum.PaymentStatusUnpaid
	case o.PaidAmount < o.Total:
		o.PaymentStatus = enum.PaymentStatusPartlyPaid
	default:
		o.PaymentStatus = enum.PaymentStatusPaid
	}
}

// RemainingAmount returns the unpaid portion of the total
func (o *Order) RemainingAmount() int64 {
	return o.Total - o.PaidAmount
}

// SyncStatusFromItems applies the automatic order transitions: open goes to
// in_progress once any non-cancelled item has left pending, and in_progress
// goes to ready once every non-cancelled item is delivered. Explicit
// transitions (completed, cancelled) are never derived here.
func (o *Order) SyncStatusFromItems(now time.Time) {
	if o.Status.IsTerminal() {
		return
	}

	anyStarted := false
	allDelivered := true
	anyActive := false
	for i := range o.Items {
		item := &o.Items[i]
		if item.Status == enum.OrderItemStatusCancelled {
			continue
		}
		anyActive = true
		if item.Status != enum.OrderItemStatusPending {
			anyStarted = true
		}
		if item.Status != enum.OrderItemStatusDelivered {
			allDelivered = false
		}
	}

	if !anyActive {
		return
	}

	if o.Status == enum.OrderStatusOpen && anyStarted {
		o.Status = enum.OrderStatusInProgress
	}
	if o.Status == enum.OrderStatusInProgress && allDelivered {
		o.Status = enum.OrderStatusReady
		if o.ReadyAt == nil {
			o.ReadyAt = &now
		}
	}
}

// ItemByID returns the item with the given ID, or nil
func (o *Order) ItemByID(itemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// OrderItem represents one priced, quantity-bearing line within an order.
// Product name, category name, unit price and tax rate are snapshots taken at
// creation time.
type OrderItem struct {
	ID           uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	OrderID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID            `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName  string               `gorm:"size:255;not null" json:"product_name"`
	CategoryName string               `gorm:"size:255" json:"category_name"`
	Quantity     int                  `gorm:"not null" json:"quantity"`
	UnitPrice    int64                `gorm:"not null" json:"-"`  // Stored in cents, excluded from JSON
	OptionsPrice int64                `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalPrice   int64                `gorm:"not null" json:"-"`  // Stored in cents, excluded from JSON
	TaxRate      float64              `gorm:"default:0" json:"tax_rate"`
	Options      StringList           `gorm:"type:jsonb;serializer:json" json:"options,omitempty"`
	Status       enum.OrderItemStatus `gorm:"default:0" json:"status"`
	PaidQuantity int                  `gorm:"default:0" json:"paid_quantity"`
	Notes        *string              `gorm:"type:text" json:"notes,omitempty"`
	StartedAt    *time.Time           `json:"started_at,omitempty"`
	ReadyAt      *time.Time           `json:"ready_at,omitempty"`
	DeliveredAt  *time.Time           `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		UnitPrice    float64 `json:"unit_price"`
		OptionsPrice float64 `json:"options_price"`
		TotalPrice   float64 `json:"total_price"`
	}{
		Alias:        Alias(i),
		UnitPrice:    float64(i.UnitPrice) / 100,
		OptionsPrice: float64(i.OptionsPrice) / 100,
		TotalPrice:   float64(i.TotalPrice) / 100,
	})
}

// UnpaidQuantity returns the quantity not yet covered by payment allocations
func (i *OrderItem) UnpaidQuantity() int {
	return i.Quantity - i.PaidQuantity
}

// UnitTotal returns the per-unit price including selected options
func (i *OrderItem) UnitTotal() int64 {
	return i.UnitPrice + i.OptionsPrice
}

// RecomputeTotalPrice recalculates the line total from its parts
func (i *OrderItem) RecomputeTotalPrice() {
	i.TotalPrice = i.UnitTotal() * int64(i.Quantity)
}
