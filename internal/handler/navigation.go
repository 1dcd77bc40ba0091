package handler

import (
	"log/slog"
	"net/http"

	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// NavigationHandler handles hierarchy navigation HTTP requests
type NavigationHandler struct {
	navService gallerySvc.NavigationService
	logger     *slog.Logger
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(navService gallerySvc.NavigationService, logger *slog.Logger) *NavigationHandler {
	return &NavigationHandler{
		navService: navService,
		logger:     logger,
	}
}

// GetBreadcrumb returns the root-to-folder trail
// GET /api/folders/{id}/breadcrumb
func (h *NavigationHandler) GetBreadcrumb(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	crumbs, err := h.navService.GetBreadcrumb(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"breadcrumbs": crumbs,
	})
}

// GetHierarchyView composes everything needed to render a folder in
// one call: the folder, its crumbs, child folders and one page of
// photos
// GET /api/folders/{id}/view?page=1&limit=50
func (h *NavigationHandler) GetHierarchyView(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	page, limit := pagination(r)

	view, err := h.navService.GetHierarchyView(r.Context(), id, page, limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}
