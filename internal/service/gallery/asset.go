package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"galeria/internal/checksum"
	"galeria/internal/config"
	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	"galeria/internal/domain/repositories"
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/mediapolicy"
	"galeria/internal/storage"
)

// assetService implements the AssetService interface
type assetService struct {
	assetRepo  galleryRepo.AssetRepository
	folderRepo galleryRepo.FolderRepository
	txManager  repositories.TransactionManager
	validator  *ResourceValidator
	policy     *mediapolicy.Registry
	signer     storage.Signer
	logger     *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(
	assetRepo galleryRepo.AssetRepository,
	folderRepo galleryRepo.FolderRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	policy *mediapolicy.Registry,
	signer storage.Signer,
	logger *slog.Logger,
) gallerySvc.AssetService {
	return &assetService{
		assetRepo:  assetRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		validator:  validator,
		policy:     policy,
		signer:     signer,
		logger:     logger,
	}
}

// RegisterAsset records an uploaded photo and enforces content
// deduplication across the whole platform
func (s *assetService) RegisterAsset(ctx context.Context, req *gallerySvc.RegisterAssetRequest) (*models.Asset, error) {
	asset, err := s.register(ctx, req)
	if err != nil {
		var dup *domain.DuplicateChecksumError
		if errors.As(err, &dup) {
			duplicatesDetectedTotal.Inc()
		}
		return nil, err
	}

	assetsRegisteredTotal.Inc()
	return asset, nil
}

func (s *assetService) register(ctx context.Context, req *gallerySvc.RegisterAssetRequest) (*models.Asset, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, err
	}

	digest, err := s.resolveChecksum(req)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateFolder(ctx, req.FolderID); err != nil {
		return nil, err
	}

	fileSize := req.FileSize
	if fileSize == 0 && len(req.Data) > 0 {
		fileSize = int64(len(req.Data))
	}

	mediaType, err := s.policy.Lookup(req.MimeType)
	if err != nil {
		return nil, err
	}
	if mediaType.MaxBytes > 0 && fileSize > mediaType.MaxBytes {
		return nil, fmt.Errorf("%w: file of %d bytes exceeds the %d byte limit for %s",
			domain.ErrValidation, fileSize, mediaType.MaxBytes, mediaType.ID)
	}

	// Friendly pre-check. The unique index on checksum is the real
	// guarantee; this just reports the surviving asset without burning
	// a transaction.
	if existing, err := s.assetRepo.GetByChecksum(ctx, digest); err == nil {
		return nil, &domain.DuplicateChecksumError{
			Checksum:        digest,
			ExistingAssetID: existing.ID,
			FolderID:        existing.FolderID,
		}
	} else if !errors.Is(err, domain.ErrAssetNotFound) {
		return nil, fmt.Errorf("failed to check for duplicates: %w", err)
	}

	asset := &models.Asset{
		FolderID:     req.FolderID,
		Filename:     req.Filename,
		OriginalPath: req.OriginalPath,
		PreviewPath:  req.PreviewPath,
		Checksum:     digest,
		FileSize:     fileSize,
		MimeType:     mediaType.ID,
		Width:        req.Width,
		Height:       req.Height,
		Status:       models.AssetStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.assetRepo.Create(ctx, asset); err != nil {
			return err
		}
		if err := s.folderRepo.AdjustCounts(ctx, req.FolderID, 0, 1); err != nil {
			return fmt.Errorf("failed to update folder counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset registered",
		"id", asset.ID,
		"folder_id", asset.FolderID,
		"checksum", asset.Checksum,
		"size", asset.FileSize,
	)

	return asset, nil
}

// resolveChecksum decides the asset's digest: computed server-side
// when raw bytes are present, otherwise taken from the client after
// normalization. When both are supplied they must agree.
func (s *assetService) resolveChecksum(req *gallerySvc.RegisterAssetRequest) (string, error) {
	if len(req.Data) > 0 {
		digest, err := checksum.Sum(req.Data)
		if err != nil {
			return "", err
		}
		if req.Checksum != "" {
			match, err := checksum.Verify(req.Data, req.Checksum)
			if err != nil {
				return "", err
			}
			if !match {
				return "", fmt.Errorf("%w: supplied checksum does not match the uploaded content", domain.ErrValidation)
			}
		}
		return digest, nil
	}

	if req.Checksum == "" {
		return "", fmt.Errorf("upload carries no content and no checksum: %w", domain.ErrEmptyContent)
	}
	return checksum.Normalize(req.Checksum)
}

// GetAsset retrieves an asset by ID
func (s *assetService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return s.assetRepo.GetByID(ctx, id)
}

// FindDuplicate looks up the asset holding a digest, if any
func (s *assetService) FindDuplicate(ctx context.Context, digest string) (*models.DuplicateMatch, error) {
	normalized, err := checksum.Normalize(digest)
	if err != nil {
		return nil, err
	}

	existing, err := s.assetRepo.GetByChecksum(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return &models.DuplicateMatch{Checksum: normalized, Duplicate: false}, nil
		}
		return nil, err
	}

	return &models.DuplicateMatch{
		Checksum:  normalized,
		Duplicate: true,
		AssetID:   existing.ID,
		FolderID:  existing.FolderID,
		Filename:  existing.Filename,
	}, nil
}

// BatchFindDuplicates checks many digests in one repository query.
// Results come back in input order, one entry per input digest.
func (s *assetService) BatchFindDuplicates(ctx context.Context, digests []string) ([]models.DuplicateMatch, error) {
	if len(digests) == 0 {
		return []models.DuplicateMatch{}, nil
	}

	normalized := make([]string, len(digests))
	unique := make([]string, 0, len(digests))
	seen := make(map[string]bool, len(digests))
	for i, d := range digests {
		n, err := checksum.Normalize(d)
		if err != nil {
			return nil, fmt.Errorf("checksum %d: %w", i, err)
		}
		normalized[i] = n
		if !seen[n] {
			seen[n] = true
			unique = append(unique, n)
		}
	}

	existing, err := s.assetRepo.GetByChecksums(ctx, unique)
	if err != nil {
		return nil, err
	}
	byChecksum := make(map[string]*models.Asset, len(existing))
	for i := range existing {
		byChecksum[existing[i].Checksum] = &existing[i]
	}

	matches := make([]models.DuplicateMatch, len(normalized))
	for i, n := range normalized {
		if a, ok := byChecksum[n]; ok {
			matches[i] = models.DuplicateMatch{
				Checksum:  n,
				Duplicate: true,
				AssetID:   a.ID,
				FolderID:  a.FolderID,
				Filename:  a.Filename,
			}
		} else {
			matches[i] = models.DuplicateMatch{Checksum: n, Duplicate: false}
		}
	}

	return matches, nil
}

// UpdateAssetStatus advances the processing lifecycle. Re-sending the
// current status is a no-op so pipeline retries stay safe.
func (s *assetService) UpdateAssetStatus(ctx context.Context, id string, req *gallerySvc.UpdateAssetStatusRequest) (*models.Asset, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown asset status %q", domain.ErrValidation, req.Status)
	}

	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if asset.Status == req.Status {
		return asset, nil
	}
	if !asset.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("asset cannot move from %s to %s: %w",
			asset.Status, req.Status, domain.ErrInvalidTransition)
	}

	asset.Status = req.Status
	if req.PreviewPath != nil {
		asset.PreviewPath = req.PreviewPath
	}
	if req.Width != nil {
		asset.Width = req.Width
	}
	if req.Height != nil {
		asset.Height = req.Height
	}
	asset.UpdatedAt = time.Now()

	if err := s.assetRepo.Update(ctx, asset); err != nil {
		return nil, err
	}

	s.logger.Info("asset status updated",
		"id", asset.ID,
		"status", asset.Status,
	)

	return asset, nil
}

// DeleteAsset removes an asset and decrements its folder's photo
// count in the same transaction. The asset is read inside the
// transaction so the decrement always lands on the folder that held it
// at delete time.
func (s *assetService) DeleteAsset(ctx context.Context, id string) error {
	var folderID string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		asset, err := s.assetRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		folderID = asset.FolderID

		if err := s.assetRepo.Delete(ctx, id); err != nil {
			return err
		}
		if err := s.folderRepo.AdjustCounts(ctx, folderID, 0, -1); err != nil {
			return fmt.Errorf("failed to update folder counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("asset deleted",
		"id", id,
		"folder_id", folderID,
	)

	return nil
}

// ListAssets returns one page of a folder's assets plus the total
// count
func (s *assetService) ListAssets(ctx context.Context, folderID string, page, limit int) ([]*models.Asset, int, error) {
	if err := s.validator.ValidateFolder(ctx, folderID); err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	assets, total, err := s.assetRepo.ListByFolder(ctx, folderID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return assetPointers(assets), total, nil
}

// VerifyAsset recomputes the digest of data and compares it to the
// asset's stored checksum
func (s *assetService) VerifyAsset(ctx context.Context, id string, data []byte) (bool, error) {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	return checksum.Verify(data, asset.Checksum)
}

// SignedOriginalURL mints a time-limited download link for the asset's
// original file
func (s *assetService) SignedOriginalURL(ctx context.Context, id string) (*models.SignedAssetURL, error) {
	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.signer.Sign(asset.OriginalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to sign download URL for asset %s: %w", id, err)
	}

	return &models.SignedAssetURL{
		AssetID:   asset.ID,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *assetService) validateRegisterRequest(req *gallerySvc.RegisterAssetRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID,
			validation.Required.Error("folder ID is required"),
		),
		validation.Field(&req.Filename,
			validation.Required.Error("filename is required"),
			validation.Length(1, config.MaxFilenameLength).Error(
				fmt.Sprintf("filename must be between 1 and %d characters", config.MaxFilenameLength)),
		),
		validation.Field(&req.OriginalPath,
			validation.Required.Error("original path is required"),
		),
		validation.Field(&req.MimeType,
			validation.Required.Error("mime type is required"),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.FileSize < 0 {
		return fmt.Errorf("%w: file size cannot be negative", domain.ErrValidation)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	return page, limit
}

func assetPointers(assets []models.Asset) []*models.Asset {
	out := make([]*models.Asset, len(assets))
	for i := range assets {
		out[i] = &assets[i]
	}
	return out
}
