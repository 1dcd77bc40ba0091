package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// AssetService handles photo registration, deduplication and lifecycle
type AssetService interface {
	// RegisterAsset records an uploaded photo. When Data is supplied
	// the checksum is computed server-side, otherwise Checksum must
	// carry the client-computed digest. Content already present
	// anywhere in the platform is rejected with a
	// DuplicateChecksumError naming the surviving asset.
	RegisterAsset(ctx context.Context, req *RegisterAssetRequest) (*gallery.Asset, error)

	// GetAsset retrieves an asset by ID
	GetAsset(ctx context.Context, id string) (*gallery.Asset, error)

	// FindDuplicate looks up the asset holding a digest, if any
	FindDuplicate(ctx context.Context, checksum string) (*gallery.DuplicateMatch, error)

	// BatchFindDuplicates checks many digests in one call. Every input
	// digest gets an entry; unknown digests report Duplicate=false.
	BatchFindDuplicates(ctx context.Context, checksums []string) ([]gallery.DuplicateMatch, error)

	// UpdateAssetStatus advances the processing lifecycle, rejecting
	// illegal transitions
	UpdateAssetStatus(ctx context.Context, id string, req *UpdateAssetStatusRequest) (*gallery.Asset, error)

	// DeleteAsset removes an asset and keeps its folder's photo count
	// consistent
	DeleteAsset(ctx context.Context, id string) error

	// ListAssets returns one page of a folder's assets with the total
	ListAssets(ctx context.Context, folderID string, page, limit int) ([]*gallery.Asset, int, error)

	// VerifyAsset recomputes the digest of the supplied bytes and
	// reports whether it matches the asset's stored checksum
	VerifyAsset(ctx context.Context, id string, data []byte) (bool, error)

	// SignedOriginalURL mints a time-limited download link for the
	// asset's original file
	SignedOriginalURL(ctx context.Context, id string) (*gallery.SignedAssetURL, error)
}

// RegisterAssetRequest represents an upload registration
type RegisterAssetRequest struct {
	FolderID     string  `json:"folder_id"`
	Filename     string  `json:"filename"`
	OriginalPath string  `json:"original_path"`
	PreviewPath  *string `json:"preview_path,omitempty"`
	Checksum     string  `json:"checksum,omitempty"` // required when Data is absent
	Data         []byte  `json:"data,omitempty"`     // raw bytes for server-side hashing
	FileSize     int64   `json:"file_size"`
	MimeType     string  `json:"mime_type"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
}

// UpdateAssetStatusRequest advances an asset's processing state
type UpdateAssetStatusRequest struct {
	Status      gallery.AssetStatus `json:"status"`
	PreviewPath *string             `json:"preview_path,omitempty"`
	Width       *int                `json:"width,omitempty"`
	Height      *int                `json:"height,omitempty"`
}
