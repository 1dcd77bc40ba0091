package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
)

// EventRepository implements galleryRepo.EventRepository on a Store
type EventRepository struct {
	store *Store
}

// NewEventRepository creates an event repository backed by store
func NewEventRepository(store *Store) galleryRepo.EventRepository {
	return &EventRepository{store: store}
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	defer r.store.lock(ctx)()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	r.store.events[event.ID] = cloneEvent(event)
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	defer r.store.lock(ctx)()

	event, ok := r.store.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, domain.ErrEventNotFound)
	}
	return cloneEvent(event), nil
}

// List retrieves all events, newest first
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	defer r.store.lock(ctx)()

	events := []models.Event{}
	for _, e := range r.store.events {
		events = append(events, *cloneEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].EventDate.Equal(events[j].EventDate) {
			return events[i].EventDate.After(events[j].EventDate)
		}
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.events[event.ID]; !ok {
		return fmt.Errorf("event %s: %w", event.ID, domain.ErrEventNotFound)
	}
	r.store.events[event.ID] = cloneEvent(event)
	return nil
}

// Delete deletes an event, rejecting events that still contain folders
// the way the foreign key would
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, domain.ErrEventNotFound)
	}
	for _, f := range r.store.folders {
		if f.EventID == id {
			return &domain.ConflictError{
				Message:      "event still contains folders",
				ResourceType: "event",
				ResourceID:   id,
			}
		}
	}

	delete(r.store.events, id)
	return nil
}
