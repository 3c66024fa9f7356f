package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// Cart is the transient shopping cart of an online-ordering session. It lives
// in Redis with a TTL, never in the database; stock is only reserved when the
// cart is submitted as an order.
type Cart struct {
	SessionID uuid.UUID        `json:"session_id"`
	EventID   uuid.UUID        `json:"event_id"`
	Source    enum.OrderSource `json:"source"`
	Items     []CartItem       `json:"items"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CartItem is one requested line in a cart. Prices are not stored here;
// pricing happens at submit time against the current catalog.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Options   []string  `json:"options,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

// IsEmpty reports whether the cart holds no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// UpsertItem adds quantity to an existing matching line or appends a new one.
// Lines match on product and identical option selection.
func (c *Cart) UpsertItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID && equalOptions(c.Items[i].Options, item.Options) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line at the given index
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
}

func equalOptions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
