package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sokoni/eventpos-api/internal/domain/entity"
	"github.com/sokoni/eventpos-api/pkg/pagination"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*entity.Event
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[uuid.UUID]*entity.Event)}
}

func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	clone := *event
	return &clone, nil
}

func (r *EventRepository) Update(ctx context.Context, event *entity.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *EventRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Event, int64, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []entity.Event
	for _, event := range r.events {
		events = append(events, *event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Name < events[j].Name
	})
	return events, int64(len(events)), nil
}
