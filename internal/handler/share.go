package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"galeria/internal/domain"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// ShareHandler serves public, unauthenticated gallery views. It is the
// only handler reachable without a session.
type ShareHandler struct {
	publishService gallerySvc.PublishService
	logger         *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(publishService gallerySvc.PublishService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		publishService: publishService,
		logger:         logger,
	}
}

// GetGallery resolves a share token into the public gallery view
// GET /api/share/{token}?page=1&limit=50
func (h *ShareHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	token, ok := PathParam(w, r, "token", "Share token")
	if !ok {
		return
	}

	page, limit := pagination(r)

	gallery, err := h.publishService.GetPublicGallery(r.Context(), token, page, limit)
	if err != nil {
		h.respondShareError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, gallery)
}

// respondShareError keeps the public error surface flat: every lookup
// failure reads the same, so tokens cannot be probed for partial
// matches or revoked-but-retained state.
func (h *ShareHandler) respondShareError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidShareToken) || errors.Is(err, domain.ErrFolderNotFound) {
		httputil.RespondError(w, http.StatusNotFound, "gallery not found")
		return
	}
	handleError(w, h.logger, err)
}
