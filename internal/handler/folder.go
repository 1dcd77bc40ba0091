package handler

import (
	"log/slog"
	"net/http"

	models "galeria/internal/domain/models/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// FolderHandler handles folder hierarchy HTTP requests
type FolderHandler struct {
	folderService gallerySvc.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService gallerySvc.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req gallerySvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// updateFolderRequest is the wire shape of a folder PATCH. parent_id
// needs OptionalString so "move to root" (explicit null) and "leave
// in place" (field absent) stay distinguishable.
type updateFolderRequest struct {
	Name      *string                 `json:"name,omitempty"`
	ParentID  httputil.OptionalString `json:"parent_id"`
	SortOrder *int                    `json:"sort_order,omitempty"`
}

// UpdateFolder renames, re-parents or re-orders a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var req updateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), id, &gallerySvc.UpdateFolderRequest{
		Name: req.Name,
		ParentID: gallerySvc.OptionalParent{
			Present: req.ParentID.Present,
			Value:   req.ParentID.Value,
		},
		SortOrder: req.SortOrder,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder. The disposition query parameter picks
// what happens to its contents: reject (default), move_to_parent or
// delete_all.
// DELETE /api/folders/{id}?disposition=delete_all
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	disposition := models.DeleteDisposition(r.URL.Query().Get("disposition"))

	if err := h.folderService.DeleteFolder(r.Context(), id, disposition); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFolders lists an event's root folders, or the children of
// parent_id when given
// GET /api/events/{id}/folders?parent_id=X
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	eventID, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	var parentID *string
	if p := r.URL.Query().Get("parent_id"); p != "" {
		parentID = &p
	}

	folders, err := h.folderService.ListFolders(r.Context(), eventID, parentID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// SearchFolders finds an event's folders by name substring
// GET /api/events/{id}/folders/search?q=sexto
func (h *FolderHandler) SearchFolders(w http.ResponseWriter, r *http.Request) {
	eventID, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	folders, err := h.folderService.SearchFolders(r.Context(), eventID, r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolderStats summarizes an event's hierarchy
// GET /api/events/{id}/folders/stats
func (h *FolderHandler) GetFolderStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := PathParam(w, r, "id", "Event ID")
	if !ok {
		return
	}

	stats, err := h.folderService.GetFolderStats(r.Context(), eventID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
