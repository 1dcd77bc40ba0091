package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// AssetRepository defines data access operations for photo assets
type AssetRepository interface {
	// Create inserts a new asset. Inserting a checksum that already
	// exists fails with a DuplicateChecksumError naming the surviving
	// asset, backed by the store's uniqueness guarantee.
	Create(ctx context.Context, asset *gallery.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id string) (*gallery.Asset, error)

	// GetByChecksum retrieves the asset holding the given digest, or
	// domain.ErrAssetNotFound
	GetByChecksum(ctx context.Context, checksum string) (*gallery.Asset, error)

	// GetByChecksums retrieves all assets matching any of the digests
	// in a single round trip
	GetByChecksums(ctx context.Context, checksums []string) ([]gallery.Asset, error)

	// ListByFolder returns one page of a folder's assets ordered by
	// filename, plus the total count
	ListByFolder(ctx context.Context, folderID string, limit, offset int) ([]gallery.Asset, int, error)

	// ListReadyByFolder is ListByFolder restricted to assets that have
	// finished processing, for public gallery pages
	ListReadyByFolder(ctx context.Context, folderID string, limit, offset int) ([]gallery.Asset, int, error)

	// Update persists status, preview path and dimension changes
	Update(ctx context.Context, asset *gallery.Asset) error

	// Delete removes an asset
	Delete(ctx context.Context, id string) error

	// ReassignFolder moves every asset in fromFolder to toFolder,
	// returning how many moved
	ReassignFolder(ctx context.Context, fromFolder, toFolder string) (int, error)
}
