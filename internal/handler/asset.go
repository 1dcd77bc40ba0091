package handler

import (
	"log/slog"
	"net/http"

	models "galeria/internal/domain/models/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/httputil"
)

// AssetHandler handles photo asset HTTP requests
type AssetHandler struct {
	assetService gallerySvc.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService gallerySvc.AssetService, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// assetListResponse is one page of a folder's assets
type assetListResponse struct {
	Assets []*models.Asset `json:"assets"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// RegisterAsset records an uploaded photo. The data field carries the
// raw bytes base64-encoded; clients that upload to storage directly
// send only the checksum instead.
// POST /api/assets
func (h *AssetHandler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req gallerySvc.RegisterAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	asset, err := h.assetService.RegisterAsset(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, asset)
}

// GetAsset retrieves an asset by ID
// GET /api/assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	asset, err := h.assetService.GetAsset(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// FindDuplicate checks whether content with the given checksum exists
// GET /api/assets/duplicates?checksum=X
func (h *AssetHandler) FindDuplicate(w http.ResponseWriter, r *http.Request) {
	checksum := r.URL.Query().Get("checksum")
	if checksum == "" {
		httputil.RespondError(w, http.StatusBadRequest, "checksum query parameter is required")
		return
	}

	match, err := h.assetService.FindDuplicate(r.Context(), checksum)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, match)
}

// batchDuplicatesRequest carries the checksums to look up
type batchDuplicatesRequest struct {
	Checksums []string `json:"checksums"`
}

// BatchFindDuplicates checks many checksums in one call, preserving
// input order in the response
// POST /api/assets/duplicates
func (h *AssetHandler) BatchFindDuplicates(w http.ResponseWriter, r *http.Request) {
	var req batchDuplicatesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	matches, err := h.assetService.BatchFindDuplicates(r.Context(), req.Checksums)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
	})
}

// UpdateAssetStatus advances an asset through its processing pipeline
// PATCH /api/assets/{id}/status
func (h *AssetHandler) UpdateAssetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	var req gallerySvc.UpdateAssetStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	asset, err := h.assetService.UpdateAssetStatus(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, asset)
}

// DeleteAsset removes an asset
// DELETE /api/assets/{id}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	if err := h.assetService.DeleteAsset(r.Context(), id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssets returns one page of a folder's assets
// GET /api/folders/{id}/assets?page=1&limit=50
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	folderID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	page, limit := pagination(r)

	assets, total, err := h.assetService.ListAssets(r.Context(), folderID, page, limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assetListResponse{
		Assets: assets,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// verifyAssetRequest carries the bytes to check, base64-encoded
type verifyAssetRequest struct {
	Data []byte `json:"data"`
}

// verifyAssetResponse reports the integrity check outcome
type verifyAssetResponse struct {
	AssetID string `json:"asset_id"`
	Match   bool   `json:"match"`
}

// VerifyAsset recomputes the checksum of the supplied bytes against
// the stored one
// POST /api/assets/{id}/verify
func (h *AssetHandler) VerifyAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	var req verifyAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	match, err := h.assetService.VerifyAsset(r.Context(), id, req.Data)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, verifyAssetResponse{
		AssetID: id,
		Match:   match,
	})
}

// DownloadOriginal mints a short-lived signed URL for the original file
// GET /api/assets/{id}/download
func (h *AssetHandler) DownloadOriginal(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Asset ID")
	if !ok {
		return
	}

	signed, err := h.assetService.SignedOriginalURL(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, signed)
}
