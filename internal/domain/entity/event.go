package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// Event is the sales context orders and stock movements belong to. Orders can
// only be created against an active event of the same organization.
type Event struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string           `gorm:"size:255;not null" json:"name"`
	Slug           string           `gorm:"size:255;not null" json:"slug"`
	Status         enum.EventStatus `gorm:"default:0" json:"status"`
	StartsAt       *time.Time       `json:"starts_at,omitempty"`
	EndsAt         *time.Time       `json:"ends_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Orders       []Order      `gorm:"foreignKey:EventID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new event
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// IsActive reports whether orders may currently be created against the event
func (e *Event) IsActive() bool {
	return e.Status == enum.EventStatusActive
}
