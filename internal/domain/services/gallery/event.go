package gallery

import (
	"context"
	"time"

	"galeria/internal/domain/models/gallery"
)

// EventService handles photography event business logic
type EventService interface {
	// CreateEvent creates a new event
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*gallery.Event, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*gallery.Event, error)

	// ListEvents retrieves all events, newest first
	ListEvents(ctx context.Context) ([]gallery.Event, error)

	// UpdateEvent applies a partial update
	UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*gallery.Event, error)

	// DeleteEvent deletes an event that contains no folders
	DeleteEvent(ctx context.Context, id string) error
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	Name      string    `json:"name"`
	School    string    `json:"school"`
	EventDate time.Time `json:"event_date"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Name      *string              `json:"name,omitempty"`
	School    *string              `json:"school,omitempty"`
	EventDate *time.Time           `json:"event_date,omitempty"`
	Status    *gallery.EventStatus `json:"status,omitempty"`
}
