package gallery

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"galeria/internal/config"
	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/storage"
	"galeria/internal/tokencache"
)

// tokenMintAttempts bounds retries when a freshly minted token collides
// with an existing one. With 256-bit tokens a single collision is
// already implausible.
const tokenMintAttempts = 3

// publishService implements the PublishService interface
type publishService struct {
	folderRepo galleryRepo.FolderRepository
	assetRepo  galleryRepo.AssetRepository
	cache      *tokencache.Cache
	signer     storage.Signer
	baseURL    string
	logger     *slog.Logger
}

// NewPublishService creates a new publish service. baseURL is the
// public origin share links are minted under.
func NewPublishService(
	folderRepo galleryRepo.FolderRepository,
	assetRepo galleryRepo.AssetRepository,
	cache *tokencache.Cache,
	signer storage.Signer,
	baseURL string,
	logger *slog.Logger,
) gallerySvc.PublishService {
	return &publishService{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		cache:      cache,
		signer:     signer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Publish makes a folder publicly reachable. Already-published folders
// keep their token unless rotation is requested. A folder that was
// unpublished earlier gets its retained token back, so old family
// links start working again.
func (s *publishService) Publish(ctx context.Context, folderID string, rotate bool) (*gallerySvc.PublishResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if folder.IsPublished && !rotate {
		return s.result(folder, false), nil
	}

	oldToken := folder.ShareToken

	// Rotation and first-time publication mint a fresh token;
	// republication reuses the retained one.
	reuse := !rotate && oldToken != nil

	// Time of publication survives rotation: the folder has been
	// public since the original publish.
	publishedAt := time.Now()
	if folder.IsPublished && folder.PublishedAt != nil {
		publishedAt = *folder.PublishedAt
	}

	var token string
	if reuse {
		token = *oldToken
		if err := s.folderRepo.SetPublication(ctx, folderID, &token, true, &publishedAt); err != nil {
			return nil, err
		}
	} else {
		token, err = s.mintAndSet(ctx, folderID, &publishedAt)
		if err != nil {
			return nil, err
		}
	}

	rotated := oldToken != nil && token != *oldToken
	if rotated {
		s.cache.Remove(*oldToken)
	}

	updated, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder published",
		"id", folderID,
		"rotated", rotated,
	)

	return s.result(updated, rotated), nil
}

// Unpublish revokes public access. The token column keeps its value so
// a later republish restores the same link. Unpublishing an
// unpublished folder succeeds without touching anything.
func (s *publishService) Unpublish(ctx context.Context, folderID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}

	if !folder.IsPublished {
		return nil
	}

	if err := s.folderRepo.SetPublication(ctx, folderID, folder.ShareToken, false, nil); err != nil {
		return err
	}

	if folder.ShareToken != nil {
		s.cache.Remove(*folder.ShareToken)
	}

	s.logger.Info("folder unpublished", "id", folderID)

	return nil
}

// RotateToken replaces the share token of a published folder. The old
// link dies the moment the new token lands.
func (s *publishService) RotateToken(ctx context.Context, folderID string) (*gallerySvc.PublishResult, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if !folder.IsPublished {
		return nil, fmt.Errorf("%w: folder is not published", domain.ErrValidation)
	}

	if _, err := s.mintAndSet(ctx, folderID, folder.PublishedAt); err != nil {
		return nil, err
	}

	if folder.ShareToken != nil {
		s.cache.Remove(*folder.ShareToken)
	}

	updated, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("share token rotated", "id", folderID)

	return s.result(updated, true), nil
}

// ResolveShareToken maps a token to its published folder. Unknown
// tokens and tokens of unpublished folders fail identically so probing
// cannot distinguish the two.
func (s *publishService) ResolveShareToken(ctx context.Context, token string) (*models.Folder, error) {
	if token == "" {
		shareResolutionsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("empty token: %w", domain.ErrInvalidShareToken)
	}

	// Cache carries only the token-to-folder mapping; the folder is
	// always read fresh and re-verified, so a stale entry can never
	// resurrect revoked access.
	if folderID, ok := s.cache.Get(token); ok {
		folder, err := s.folderRepo.GetByID(ctx, folderID)
		if err == nil && folder.IsPublished && folder.ShareToken != nil &&
			subtle.ConstantTimeCompare([]byte(*folder.ShareToken), []byte(token)) == 1 {
			shareResolutionsTotal.WithLabelValues("ok").Inc()
			return folder, nil
		}
		s.cache.Remove(token)
	}

	folder, err := s.folderRepo.GetByShareToken(ctx, token)
	if err != nil {
		shareResolutionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if !folder.IsPublished {
		shareResolutionsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("folder is not published: %w", domain.ErrInvalidShareToken)
	}

	s.cache.Add(token, folder.ID)
	shareResolutionsTotal.WithLabelValues("ok").Inc()
	return folder, nil
}

// GetPublicGallery resolves a token and composes the public view with
// one page of processed photos
func (s *publishService) GetPublicGallery(ctx context.Context, token string, page, limit int) (*models.PublicGallery, error) {
	folder, err := s.ResolveShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	assets, total, err := s.assetRepo.ListReadyByFolder(ctx, folder.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	public := make([]*models.PublicAsset, len(assets))
	for i := range assets {
		public[i] = &models.PublicAsset{
			ID:       assets[i].ID,
			Filename: assets[i].Filename,
			Width:    assets[i].Width,
			Height:   assets[i].Height,
		}
		// Ready assets always carry a preview. A signing failure hides
		// that one image rather than failing the whole gallery.
		if assets[i].PreviewPath != nil {
			url, _, err := s.signer.Sign(*assets[i].PreviewPath)
			if err != nil {
				s.logger.Warn("failed to sign preview URL",
					"asset_id", assets[i].ID,
					"error", err,
				)
				continue
			}
			public[i].PreviewURL = url
		}
	}

	var publishedAt time.Time
	if folder.PublishedAt != nil {
		publishedAt = *folder.PublishedAt
	}

	return &models.PublicGallery{
		FolderID:    folder.ID,
		Name:        folder.Name,
		PhotoCount:  folder.PhotoCount,
		PublishedAt: publishedAt,
		Assets:      public,
		TotalAssets: total,
		Page:        page,
		Limit:       limit,
	}, nil
}

// mintAndSet generates a fresh token and stores it, retrying the
// minuscule chance of a collision with another folder's token
func (s *publishService) mintAndSet(ctx context.Context, folderID string, publishedAt *time.Time) (string, error) {
	var lastErr error
	for attempt := 0; attempt < tokenMintAttempts; attempt++ {
		token, err := mintToken()
		if err != nil {
			return "", err
		}
		err = s.folderRepo.SetPublication(ctx, folderID, &token, true, publishedAt)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to mint a unique share token after %d attempts: %w", tokenMintAttempts, lastErr)
}

// mintToken returns a fresh random token as lowercase hex
func mintToken() (string, error) {
	buf := make([]byte, config.ShareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *publishService) result(folder *models.Folder, rotated bool) *gallerySvc.PublishResult {
	token := ""
	if folder.ShareToken != nil {
		token = *folder.ShareToken
	}
	return &gallerySvc.PublishResult{
		Folder:   folder,
		Token:    token,
		ShareURL: s.baseURL + "/share/" + token,
		Rotated:  rotated,
	}
}
