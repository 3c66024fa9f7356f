// Package authz enforces per-staff capabilities. Capabilities travel in the
// access token and are placed on the request context by the auth middleware;
// the gate only decides, it never loads anything.
package authz

import (
	"context"
	"fmt"

	"github.com/sokoni/eventpos-api/pkg/apperror"
)

type ctxKey string

const capabilitiesKey ctxKey = "capabilities"

// WithCapabilities returns a context carrying the actor's capabilities
func WithCapabilities(ctx context.Context, capabilities []string) context.Context {
	return context.WithValue(ctx, capabilitiesKey, capabilities)
}

// CapabilitiesFromContext returns the actor's capabilities, or nil
func CapabilitiesFromContext(ctx context.Context) []string {
	capabilities, _ := ctx.Value(capabilitiesKey).([]string)
	return capabilities
}

// Gate checks required capabilities against the request context. A "*"
// capability grants everything.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) Require(ctx context.Context, capability string) error {
	for _, held := range CapabilitiesFromContext(ctx) {
		if held == capability || held == "*" {
			return nil
		}
	}
	return apperror.NewForbiddenError(fmt.Sprintf("Missing capability: %s", capability))
}
