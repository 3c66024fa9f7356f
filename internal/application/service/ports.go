package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/infrastructure/messaging"
)

// CapabilityGate decides whether the acting staff member may perform an
// operation. Checkout from an online-ordering session carries no staff actor
// and bypasses the gate.
type CapabilityGate interface {
	Require(ctx context.Context, capability string) error
}

// EventPublisher fans order lifecycle events out to downstream consumers.
// Publishing happens after the mutation is committed; failures are logged
// and never propagated to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AutomationDispatcher hands business triggers to the automation pipeline
type AutomationDispatcher interface {
	Dispatch(ctx context.Context, trigger messaging.AutomationTrigger) error
}

// CartStore holds transient session carts
type CartStore interface {
	// Get retrieves a session's cart, or (nil, nil) when none exists
	Get(ctx context.Context, sessionID uuid.UUID) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// Capabilities required by the staff-facing operations
const (
	CapOrdersWrite     = "orders:write"
	CapOrdersCancel    = "orders:cancel"
	CapPaymentsCapture = "payments:capture"
	CapStockAdjust     = "stock:adjust"
	CapProductsWrite   = "products:write"
	CapEventsWrite     = "events:write"
)
