package handler

import (
	"log/slog"
	"net/http"

	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// PublishHandler handles the share-token lifecycle HTTP requests
type PublishHandler struct {
	publishService gallerySvc.PublishService
	logger         *slog.Logger
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(publishService gallerySvc.PublishService, logger *slog.Logger) *PublishHandler {
	return &PublishHandler{
		publishService: publishService,
		logger:         logger,
	}
}

// publishRequest is the optional publish body
type publishRequest struct {
	Rotate bool `json:"rotate"`
}

// Publish makes a folder publicly reachable, minting or reusing its
// share token. Re-publishing an already-published folder is a no-op
// unless rotate is set.
// POST /api/folders/{id}/publish
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	// Body is optional; an empty or absent body means no rotation
	var req publishRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.publishService.Publish(r.Context(), id, req.Rotate)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Unpublish revokes public access. The token is retained so a later
// republish restores the same family links.
// DELETE /api/folders/{id}/publish
func (h *PublishHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.publishService.Unpublish(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RotateToken replaces the share token of a published folder. The old
// link stops working immediately.
// POST /api/folders/{id}/publish/rotate
func (h *PublishHandler) RotateToken(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	result, err := h.publishService.RotateToken(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
