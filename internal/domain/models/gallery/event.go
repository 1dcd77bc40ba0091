package gallery

import (
	"time"
)

// EventStatus tracks the lifecycle of a photography event.
type EventStatus string

const (
	EventStatusDraft    EventStatus = "draft"
	EventStatusActive   EventStatus = "active"
	EventStatusArchived EventStatus = "archived"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusActive, EventStatusArchived:
		return true
	}
	return false
}

type Event struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	School    string      `json:"school" db:"school"`
	EventDate time.Time   `json:"event_date" db:"event_date"`
	Status    EventStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
