package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a sellable catalog entry. Orders never reference product
// prices live; name and price are snapshotted onto the order item at creation
// time so later catalog edits leave historical orders untouched.
type Product struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	EventID         *uuid.UUID     `gorm:"type:uuid;index" json:"event_id,omitempty"`
	CategoryID      *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Code            string         `gorm:"size:100;unique;not null" json:"code"`
	Price           int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxRate         float64        `gorm:"default:0" json:"tax_rate"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	IsAvailable     bool           `gorm:"default:true" json:"is_available"`
	TracksInventory bool           `gorm:"default:false" json:"tracks_inventory"`
	Quantity        int            `gorm:"default:0" json:"quantity"`
	QuantityAlert   int            `gorm:"default:0" json:"quantity_alert"`
	Modifiers       ModifierList   `gorm:"type:jsonb;serializer:json" json:"modifiers,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Event        *Event       `gorm:"foreignKey:EventID" json:"-"`
	Category     *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Modifier is a selectable product option with a price delta in cents
type Modifier struct {
	Name       string `json:"name"`
	PriceDelta int64  `json:"price_delta"`
}

// ModifierList is a JSON-serialized list of modifiers
type ModifierList []Modifier

// PriceFor sums the price deltas of the selected modifier names. Unknown
// names are ignored so removed modifiers never block existing carts.
func (m ModifierList) PriceFor(selected []string) int64 {
	var total int64
	for _, name := range selected {
		for _, mod := range m {
			if mod.Name == name {
				total += mod.PriceDelta
				break
			}
		}
	}
	return total
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// GetPriceDecimal returns the price as a decimal (for display)
func (p *Product) GetPriceDecimal() float64 {
	return float64(p.Price) / 100
}

// SetPriceFromDecimal sets the price from a decimal value
func (p *Product) SetPriceFromDecimal(price float64) {
	p.Price = int64(price * 100)
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(p),
		Price: p.GetPriceDecimal(),
	})
}

// Category represents a product category
type Category struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Slug           string         `gorm:"size:255;not null" json:"slug"`
	SortOrder      int            `gorm:"default:0" json:"sort_order"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Products     []Product    `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
