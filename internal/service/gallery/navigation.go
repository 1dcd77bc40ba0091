package gallery

import (
	"context"
	"fmt"
	"log/slog"

	"galeria/internal/config"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
)

// navigationService implements the NavigationService interface
type navigationService struct {
	folderRepo galleryRepo.FolderRepository
	assetRepo  galleryRepo.AssetRepository
	logger     *slog.Logger
}

// NewNavigationService creates a new navigation service
func NewNavigationService(
	folderRepo galleryRepo.FolderRepository,
	assetRepo galleryRepo.AssetRepository,
	logger *slog.Logger,
) gallerySvc.NavigationService {
	return &navigationService{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		logger:     logger,
	}
}

// GetBreadcrumb returns the root-to-folder trail. The walk is bounded
// and tracks visited folders: the store prevents cycles, but if one
// ever appears the walk reports corruption instead of spinning.
func (s *navigationService) GetBreadcrumb(ctx context.Context, folderID string) ([]models.Crumb, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	// Collected leaf-to-root, reversed before returning.
	crumbs := make([]models.Crumb, 0, folder.Depth+1)
	seen := make(map[string]bool)
	current := folder
	for i := 0; i <= config.MaxFolderDepth; i++ {
		if seen[current.ID] {
			return nil, fmt.Errorf("folder hierarchy corrupt: cycle through %s", current.ID)
		}
		seen[current.ID] = true
		crumbs = append(crumbs, models.Crumb{
			ID:    current.ID,
			Name:  current.Name,
			Depth: current.Depth,
		})

		if current.ParentID == nil {
			for l, r := 0, len(crumbs)-1; l < r; l, r = l+1, r-1 {
				crumbs[l], crumbs[r] = crumbs[r], crumbs[l]
			}
			return crumbs, nil
		}

		parent, err := s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("folder hierarchy corrupt: ancestor %s unreadable: %v", *current.ParentID, err)
		}
		current = parent
	}

	return nil, fmt.Errorf("folder hierarchy corrupt: ancestor chain of %s exceeds depth limit", folderID)
}

// GetHierarchyView composes everything a navigation UI needs for one
// folder: the folder itself, its breadcrumb trail, its direct children
// and one page of assets. Children are capped rather than paginated;
// the folder's child_folder_count tells clients when the cap truncated
// the list.
func (s *navigationService) GetHierarchyView(ctx context.Context, folderID string, page, limit int) (*models.HierarchyView, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	crumbs, err := s.GetBreadcrumb(ctx, folderID)
	if err != nil {
		return nil, err
	}

	children, err := s.folderRepo.ListChildren(ctx, folder.EventID, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	if len(children) > config.MaxPageSize {
		children = children[:config.MaxPageSize]
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	assets, total, err := s.assetRepo.ListByFolder(ctx, folder.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return &models.HierarchyView{
		Folder:       folder,
		Breadcrumbs:  crumbs,
		ChildFolders: folderPointers(children),
		Assets:       assetPointers(assets),
		TotalAssets:  total,
		Page:         page,
		Limit:        limit,
		Limits: models.NavigationLimits{
			MaxDepth:       config.MaxFolderDepth,
			MaxHistorySize: config.MaxNavigationHistory,
		},
	}, nil
}

func folderPointers(folders []models.Folder) []*models.Folder {
	out := make([]*models.Folder, len(folders))
	for i := range folders {
		out[i] = &folders[i]
	}
	return out
}
