package request

import (
	"time"

	"github.com/sokoni/eventpos-api/internal/domain/enum"
)

// CreateEventRequest represents the create event request body
type CreateEventRequest struct {
	Name     string     `json:"name" binding:"required"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// UpdateEventStatusRequest represents the event status transition request
// body
type UpdateEventStatusRequest struct {
	Status enum.EventStatus `json:"status" binding:"required"`
}
