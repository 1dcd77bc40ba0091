package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"galeria/internal/config"
	"galeria/internal/domain"
	"galeria/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Unexpected
// errors become an opaque 500 with the cause logged, never echoed.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var notEmpty *domain.FolderNotEmptyError
	var duplicate *domain.DuplicateChecksumError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &notEmpty):
		// Counts tell the client what is blocking the delete
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmpty.Error(), map[string]interface{}{
			"folder_id":     notEmpty.FolderID,
			"child_folders": notEmpty.ChildFolders,
			"assets":        notEmpty.Assets,
		})
	case errors.As(err, &duplicate):
		// Point at the surviving asset so clients can link instead of re-uploading
		httputil.RespondErrorWithExtras(w, http.StatusConflict, duplicate.Error(), map[string]interface{}{
			"checksum":          duplicate.Checksum,
			"existing_asset_id": duplicate.ExistingAssetID,
			"folder_id":         duplicate.FolderID,
		})
	case errors.As(err, &conflict):
		httputil.RespondError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, domain.ErrInvalidShareToken):
		// Unknown and revoked tokens answer identically
		httputil.RespondError(w, http.StatusNotFound, "gallery not found")
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCircularReference):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrDepthExceeded),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrEmptyContent):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrFolderNotFound),
		errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrParentNotFound),
		errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam extracts a required path value, responding 400 when absent
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// QueryInt parses an integer query parameter, clamping to [min, max].
// Missing or malformed values fall back to def.
func QueryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// pagination reads the standard page/limit query parameters
func pagination(r *http.Request) (page, limit int) {
	page = QueryInt(r, "page", 1, 1, 1<<30)
	limit = QueryInt(r, "limit", config.DefaultPageSize, 1, config.MaxPageSize)
	return page, limit
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
