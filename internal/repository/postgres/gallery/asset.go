package gallery

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"

	"galeria/internal/repository/postgres"
)

const assetColumns = "id, folder_id, filename, original_path, preview_path, checksum, file_size, mime_type, width, height, status, created_at, updated_at"

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) galleryRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(
		&a.ID,
		&a.FolderID,
		&a.Filename,
		&a.OriginalPath,
		&a.PreviewPath,
		&a.Checksum,
		&a.FileSize,
		&a.MimeType,
		&a.Width,
		&a.Height,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new asset. The unique index on checksum decides
// duplicate races: whichever insert lands second gets a
// DuplicateChecksumError naming the surviving asset.
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, filename, original_path, preview_path, checksum, file_size, mime_type, width, height, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.FolderID,
		asset.Filename,
		asset.OriginalPath,
		asset.PreviewPath,
		asset.Checksum,
		asset.FileSize,
		asset.MimeType,
		asset.Width,
		asset.Height,
		asset.Status,
		asset.CreatedAt,
		asset.UpdatedAt,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			existing, queryErr := r.GetByChecksum(ctx, asset.Checksum)
			if queryErr != nil {
				return fmt.Errorf("content with checksum %s already exists: %w", asset.Checksum, domain.ErrConflict)
			}
			return &domain.DuplicateChecksumError{
				Checksum:        asset.Checksum,
				ExistingAssetID: existing.ID,
				FolderID:        existing.FolderID,
			}
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("folder %s: %w", asset.FolderID, domain.ErrFolderNotFound)
		}
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return asset, nil
}

// GetByChecksum retrieves the asset holding the given digest
func (r *PostgresAssetRepository) GetByChecksum(ctx context.Context, checksum string) (*models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE checksum = $1
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, checksum))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("checksum %s: %w", checksum, domain.ErrAssetNotFound)
		}
		return nil, fmt.Errorf("get asset by checksum: %w", err)
	}

	return asset, nil
}

// GetByChecksums retrieves all assets matching any of the digests in a
// single round trip
func (r *PostgresAssetRepository) GetByChecksums(ctx context.Context, checksums []string) ([]models.Asset, error) {
	if len(checksums) == 0 {
		return []models.Asset{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE checksum = ANY($1)
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, checksums)
	if err != nil {
		return nil, fmt.Errorf("get assets by checksums: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// ListByFolder returns one page of a folder's assets ordered by
// filename, plus the total count
func (r *PostgresAssetRepository) ListByFolder(ctx context.Context, folderID string, limit, offset int) ([]models.Asset, int, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE folder_id = $1
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	if err := executor.QueryRow(ctx, countQuery, folderID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1
		ORDER BY filename, id
		LIMIT $2 OFFSET $3
	`, assetColumns, r.tables.Assets)

	rows, err := executor.Query(ctx, query, folderID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets, err := collectAssets(rows)
	if err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// ListReadyByFolder is ListByFolder restricted to ready assets
func (r *PostgresAssetRepository) ListReadyByFolder(ctx context.Context, folderID string, limit, offset int) ([]models.Asset, int, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE folder_id = $1 AND status = $2
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	if err := executor.QueryRow(ctx, countQuery, folderID, models.AssetStatusReady).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ready assets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE folder_id = $1 AND status = $2
		ORDER BY filename, id
		LIMIT $3 OFFSET $4
	`, assetColumns, r.tables.Assets)

	rows, err := executor.Query(ctx, query, folderID, models.AssetStatusReady, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ready assets: %w", err)
	}
	defer rows.Close()

	assets, err := collectAssets(rows)
	if err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// Update persists status, preview path and dimension changes
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, preview_path = $2, width = $3, height = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		asset.Status,
		asset.PreviewPath,
		asset.Width,
		asset.Height,
		asset.UpdatedAt,
		asset.ID,
	)

	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", asset.ID, domain.ErrAssetNotFound)
	}

	return nil
}

// Delete removes an asset
func (r *PostgresAssetRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
	}

	return nil
}

// ReassignFolder moves every asset in fromFolder to toFolder
func (r *PostgresAssetRepository) ReassignFolder(ctx context.Context, fromFolder, toFolder string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = NOW()
		WHERE folder_id = $2
	`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, toFolder, fromFolder)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, fmt.Errorf("folder %s: %w", toFolder, domain.ErrFolderNotFound)
		}
		return 0, fmt.Errorf("reassign assets: %w", err)
	}

	return int(result.RowsAffected()), nil
}

func collectAssets(rows pgx.Rows) ([]models.Asset, error) {
	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	// Return empty slice instead of nil if no assets
	if assets == nil {
		assets = []models.Asset{}
	}

	return assets, nil
}
