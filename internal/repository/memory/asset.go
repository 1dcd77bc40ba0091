package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
)

// AssetRepository implements galleryRepo.AssetRepository on a Store
type AssetRepository struct {
	store *Store
}

// NewAssetRepository creates an asset repository backed by store
func NewAssetRepository(store *Store) galleryRepo.AssetRepository {
	return &AssetRepository{store: store}
}

// Create inserts a new asset, enforcing global checksum uniqueness the
// way the production unique index does: the loser of a duplicate race
// learns which asset survived.
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[asset.FolderID]; !ok {
		return fmt.Errorf("folder %s: %w", asset.FolderID, domain.ErrFolderNotFound)
	}
	for _, a := range r.store.assets {
		if a.Checksum == asset.Checksum {
			return &domain.DuplicateChecksumError{
				Checksum:        asset.Checksum,
				ExistingAssetID: a.ID,
				FolderID:        a.FolderID,
			}
		}
	}

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	r.store.assets[asset.ID] = cloneAsset(asset)
	return nil
}

// GetByID retrieves an asset by ID
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	defer r.store.lock(ctx)()

	asset, ok := r.store.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
	}
	return cloneAsset(asset), nil
}

// GetByChecksum retrieves the asset holding the given digest
func (r *AssetRepository) GetByChecksum(ctx context.Context, checksum string) (*models.Asset, error) {
	defer r.store.lock(ctx)()

	for _, a := range r.store.assets {
		if a.Checksum == checksum {
			return cloneAsset(a), nil
		}
	}
	return nil, fmt.Errorf("checksum %s: %w", checksum, domain.ErrAssetNotFound)
}

// GetByChecksums retrieves all assets matching any of the digests
func (r *AssetRepository) GetByChecksums(ctx context.Context, checksums []string) ([]models.Asset, error) {
	defer r.store.lock(ctx)()

	wanted := make(map[string]bool, len(checksums))
	for _, c := range checksums {
		wanted[c] = true
	}

	assets := []models.Asset{}
	for _, a := range r.store.assets {
		if wanted[a.Checksum] {
			assets = append(assets, *cloneAsset(a))
		}
	}
	return assets, nil
}

// ListByFolder returns one page of a folder's assets ordered by
// filename, plus the total count
func (r *AssetRepository) ListByFolder(ctx context.Context, folderID string, limit, offset int) ([]models.Asset, int, error) {
	defer r.store.lock(ctx)()

	all := []models.Asset{}
	for _, a := range r.store.assets {
		if a.FolderID == folderID {
			all = append(all, *cloneAsset(a))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Filename != all[j].Filename {
			return all[i].Filename < all[j].Filename
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset >= total {
		return []models.Asset{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// ListReadyByFolder is ListByFolder restricted to ready assets
func (r *AssetRepository) ListReadyByFolder(ctx context.Context, folderID string, limit, offset int) ([]models.Asset, int, error) {
	defer r.store.lock(ctx)()

	all := []models.Asset{}
	for _, a := range r.store.assets {
		if a.FolderID == folderID && a.Status == models.AssetStatusReady {
			all = append(all, *cloneAsset(a))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Filename != all[j].Filename {
			return all[i].Filename < all[j].Filename
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset >= total {
		return []models.Asset{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Update persists status, preview path and dimension changes, writing
// exactly the fields the production adapter writes
func (r *AssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.assets[asset.ID]
	if !ok {
		return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrAssetNotFound)
	}
	stored.Status = asset.Status
	stored.PreviewPath = clonePtr(asset.PreviewPath)
	stored.Width = clonePtr(asset.Width)
	stored.Height = clonePtr(asset.Height)
	stored.UpdatedAt = asset.UpdatedAt
	return nil
}

// Delete removes an asset
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.assets[id]; !ok {
		return fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
	}
	delete(r.store.assets, id)
	return nil
}

// ReassignFolder moves every asset in fromFolder to toFolder
func (r *AssetRepository) ReassignFolder(ctx context.Context, fromFolder, toFolder string) (int, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[toFolder]; !ok {
		return 0, fmt.Errorf("folder %s: %w", toFolder, domain.ErrFolderNotFound)
	}

	moved := 0
	now := time.Now().UTC()
	for _, a := range r.store.assets {
		if a.FolderID == fromFolder {
			a.FolderID = toFolder
			a.UpdatedAt = now
			moved++
		}
	}
	return moved, nil
}
