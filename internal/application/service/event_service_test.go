package service_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/infrastructure/authz"
)

func newEventService(env *orderEnv) *service.EventService {
	return service.NewEventService(env.events, authz.NewGate(), "https://order.example.com")
}

func TestEventService_CreateEvent(t *testing.T) {
	env := newOrderEnv(t)
	svc := newEventService(env)
	ctx := env.ctx("events:write")

	event, err := svc.CreateEvent(ctx, &service.CreateEventInput{Name: "Oktoberfest Stand 3"})
	require.NoError(t, err)
	assert.Equal(t, enum.EventStatusDraft, event.Status)
	assert.Equal(t, "oktoberfest-stand-3", event.Slug)

	_, err = svc.CreateEvent(ctx, &service.CreateEventInput{Name: ""})
	require.Error(t, err)

	starts := time.Now()
	ends := starts.Add(-time.Hour)
	_, err = svc.CreateEvent(ctx, &service.CreateEventInput{Name: "Backwards", StartsAt: &starts, EndsAt: &ends})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot end before it starts")

	_, err = svc.CreateEvent(env.ctx(), &service.CreateEventInput{Name: "No Capability"})
	require.Error(t, err)
}

func TestEventService_StatusTransitions(t *testing.T) {
	env := newOrderEnv(t)
	svc := newEventService(env)
	ctx := env.ctx("events:write")

	event, err := svc.CreateEvent(ctx, &service.CreateEventInput{Name: "Spring Market"})
	require.NoError(t, err)

	// Draft cannot close directly
	_, err = svc.UpdateEventStatus(ctx, event.ID, enum.EventStatusClosed)
	require.Error(t, err)

	event, err = svc.UpdateEventStatus(ctx, event.ID, enum.EventStatusActive)
	require.NoError(t, err)
	assert.True(t, event.IsActive())

	event, err = svc.UpdateEventStatus(ctx, event.ID, enum.EventStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, enum.EventStatusClosed, event.Status)

	// Closed events stay closed
	_, err = svc.UpdateEventStatus(ctx, event.ID, enum.EventStatusActive)
	require.Error(t, err)
}

func TestEventService_OrderingQR(t *testing.T) {
	env := newOrderEnv(t)
	svc := newEventService(env)
	ctx := env.ctx("events:write")

	png, err := svc.OrderingQR(ctx, env.event.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	// Draft events have no ordering page yet
	draft, err := svc.CreateEvent(ctx, &service.CreateEventInput{Name: "Not Yet"})
	require.NoError(t, err)
	_, err = svc.OrderingQR(ctx, draft.ID, 256)
	require.Error(t, err)
}
