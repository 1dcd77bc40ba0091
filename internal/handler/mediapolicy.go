package handler

import (
	"log/slog"
	"net/http"

	"galeria/internal/httputil"
	"galeria/internal/mediapolicy"
)

// MediaPolicyHandler exposes the upload policy so clients can validate
// files before uploading
type MediaPolicyHandler struct {
	registry *mediapolicy.Registry
	logger   *slog.Logger
}

// NewMediaPolicyHandler creates a new media policy handler
func NewMediaPolicyHandler(registry *mediapolicy.Registry, logger *slog.Logger) *MediaPolicyHandler {
	return &MediaPolicyHandler{
		registry: registry,
		logger:   logger,
	}
}

// mediaTypeResponse describes one accepted upload type
type mediaTypeResponse struct {
	MimeType   string   `json:"mime_type"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	MaxBytes   int64    `json:"max_bytes"`
	Preview    bool     `json:"preview"`
}

// variantResponse describes one derived rendition
type variantResponse struct {
	Name      string `json:"name"`
	MaxEdge   int    `json:"max_edge"`
	Format    string `json:"format"`
	Watermark bool   `json:"watermark"`
}

// GetPolicy returns the accepted media types and the renditions the
// pipeline derives from them
// GET /api/media/policy
func (h *MediaPolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy := h.registry.Policy()

	types := make([]mediaTypeResponse, 0, len(policy.Types))
	for _, t := range policy.Types {
		types = append(types, mediaTypeResponse{
			MimeType:   t.ID,
			Name:       t.DisplayName,
			Extensions: t.Extensions,
			MaxBytes:   t.MaxBytes,
			Preview:    t.Preview,
		})
	}

	variants := make([]variantResponse, 0, len(policy.Variants))
	for _, v := range policy.Variants {
		variants = append(variants, variantResponse{
			Name:      v.Name,
			MaxEdge:   v.MaxEdge,
			Format:    v.Format,
			Watermark: v.Watermark,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"policy":   policy.Policy,
		"types":    types,
		"variants": variants,
	})
}
