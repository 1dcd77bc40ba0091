package handler

import (
	"log/slog"
	"net/http"

	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// EventHandler handles photography event HTTP requests
type EventHandler struct {
	eventService gallerySvc.EventService
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService gallerySvc.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// CreateEvent creates a new event
// POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req gallerySvc.CreateEventRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, event)
}

// ListEvents retrieves all events, newest first
// GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, events)
}

// GetEvent retrieves an event by ID
// GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, event)
}

// UpdateEvent applies a partial update to an event
// PATCH /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	var req gallerySvc.UpdateEventRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, event)
}

// DeleteEvent deletes an event that contains no folders
// DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
