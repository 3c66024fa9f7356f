package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/internal/domain/enum"
	"github.com/sokoni/eventpos-api/internal/domain/repository"
	infraRepo "github.com/sokoni/eventpos-api/internal/infrastructure/repository"
	"github.com/sokoni/eventpos-api/pkg/apperror"
	"github.com/sokoni/eventpos-api/pkg/pagination"
	"github.com/sokoni/eventpos-api/pkg/utils"
)

// EventService manages sales contexts and their QR entry points
type EventService struct {
	eventRepo       repository.EventRepository
	gate            CapabilityGate
	orderingBaseURL string
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, gate CapabilityGate, orderingBaseURL string) *EventService {
	return &EventService{
		eventRepo:       eventRepo,
		gate:            gate,
		orderingBaseURL: orderingBaseURL,
	}
}

// CreateEventInput represents the create event input
type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// CreateEvent creates a draft event
func (s *EventService) CreateEvent(ctx context.Context, input *CreateEventInput) (*entity.Event, error) {
	if err := s.gate.Require(ctx, CapEventsWrite); err != nil {
		return nil, err
	}

	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if input.Name == "" {
		return nil, apperror.NewValidationError("Event name is required")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, apperror.NewValidationError("Event cannot end before it starts")
	}

	event := &entity.Event{
		OrganizationID: orgID,
		Name:           input.Name,
		Slug:           utils.Slugify(input.Name),
		Status:         enum.EventStatusDraft,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NewNotFoundError("Event")
	}
	return event, nil
}

// ListEvents lists the organization's events
func (s *EventService) ListEvents(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Event], error) {
	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(events, pag), nil
}

// UpdateEventStatus moves an event forward: draft to active, active to
// closed. Closed events stay closed.
func (s *EventService) UpdateEventStatus(ctx context.Context, id uuid.UUID, next enum.EventStatus) (*entity.Event, error) {
	if err := s.gate.Require(ctx, CapEventsWrite); err != nil {
		return nil, err
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	valid := (event.Status == enum.EventStatusDraft && next == enum.EventStatusActive) ||
		(event.Status == enum.EventStatusActive && next == enum.EventStatusClosed)
	if !valid {
		return nil, apperror.NewConflictError(
			fmt.Sprintf("Event cannot move from %s to %s", event.Status, next))
	}

	event.Status = next
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// OrderingQR renders the PNG QR code that opens the event's online ordering
// page
func (s *EventService) OrderingQR(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsActive() {
		return nil, apperror.NewConflictError("Event is not accepting orders")
	}
	if size <= 0 {
		size = 256
	}

	url := fmt.Sprintf("%s/order/%s?event=%s", s.orderingBaseURL, event.Slug, event.ID)
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
