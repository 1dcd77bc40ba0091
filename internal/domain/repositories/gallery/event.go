package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// EventRepository defines data access operations for photography events
type EventRepository interface {
	// Create creates a new event
	Create(ctx context.Context, event *gallery.Event) error

	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*gallery.Event, error)

	// List retrieves all events, newest first
	List(ctx context.Context) ([]gallery.Event, error)

	// Update updates an event
	Update(ctx context.Context, event *gallery.Event) error

	// Delete deletes an event
	Delete(ctx context.Context, id string) error
}
