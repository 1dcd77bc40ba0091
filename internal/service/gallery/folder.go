package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"galeria/internal/config"
	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	"galeria/internal/domain/repositories"
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/tokencache"
)

// folderService implements the FolderService interface
type folderService struct {
	folderRepo galleryRepo.FolderRepository
	assetRepo  galleryRepo.AssetRepository
	txManager  repositories.TransactionManager
	validator  *ResourceValidator
	cache      *tokencache.Cache
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo galleryRepo.FolderRepository,
	assetRepo galleryRepo.AssetRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	cache *tokencache.Cache,
	logger *slog.Logger,
) gallerySvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		txManager:  txManager,
		validator:  validator,
		cache:      cache,
		logger:     logger,
	}
}

// CreateFolder creates a folder under an optional parent. Depth and
// path are computed from the parent chain inside the same transaction
// that takes the event tree lock, so concurrent mutations cannot leave
// them stale.
func (s *folderService) CreateFolder(ctx context.Context, req *gallerySvc.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	parentID := normalizeParentID(req.ParentID)

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockEventTree(ctx, req.EventID); err != nil {
			return fmt.Errorf("failed to lock event tree: %w", err)
		}

		if err := s.validator.ValidateEvent(ctx, req.EventID); err != nil {
			return err
		}

		depth := 0
		path := name
		if parentID != nil {
			parent, err := s.folderRepo.GetByID(ctx, *parentID)
			if err != nil {
				return fmt.Errorf("parent folder %s: %w", *parentID, domain.ErrParentNotFound)
			}
			if parent.EventID != req.EventID {
				return fmt.Errorf("parent folder belongs to a different event: %w", domain.ErrParentNotFound)
			}
			depth = parent.Depth + 1
			if depth > config.MaxFolderDepth {
				return fmt.Errorf("folder would be at depth %d, maximum is %d: %w",
					depth, config.MaxFolderDepth, domain.ErrDepthExceeded)
			}
			path = parent.Path + "/" + name
		}

		if len(path) > config.MaxFolderPathLength {
			return fmt.Errorf("%w: folder path exceeds %d characters", domain.ErrValidation, config.MaxFolderPathLength)
		}

		sortOrder := 0
		if req.SortOrder != nil {
			sortOrder = *req.SortOrder
		}

		folder = &models.Folder{
			EventID:   req.EventID,
			ParentID:  parentID,
			Name:      name,
			Path:      path,
			Depth:     depth,
			SortOrder: sortOrder,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}

		if parentID != nil {
			if err := s.folderRepo.AdjustCounts(ctx, *parentID, 1, 0); err != nil {
				return fmt.Errorf("failed to update parent counters: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"event_id", folder.EventID,
		"path", folder.Path,
		"depth", folder.Depth,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// UpdateFolder renames and/or moves a folder. All validation, cycle
// detection included, runs before any row changes so a rejected move
// leaves the tree untouched.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *gallerySvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	// First read resolves the event so the tree lock can be taken; the
	// folder is read again under the lock.
	initial, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	eventID := initial.EventID

	var folder *models.Folder
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockEventTree(ctx, eventID); err != nil {
			return fmt.Errorf("failed to lock event tree: %w", err)
		}

		folder, err = s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		newName := folder.Name
		if req.Name != nil {
			newName = strings.TrimSpace(*req.Name)
		}

		newParentID := folder.ParentID
		parentChanged := false
		if req.ParentID.Present {
			newParentID = normalizeParentID(req.ParentID.Value)
			parentChanged = !sameParentID(folder.ParentID, newParentID)
		}

		newDepth := folder.Depth
		newPath := newName
		if newParentID != nil {
			newParent, err := s.folderRepo.GetByID(ctx, *newParentID)
			if err != nil {
				return fmt.Errorf("parent folder %s: %w", *newParentID, domain.ErrParentNotFound)
			}
			if newParent.EventID != eventID {
				return fmt.Errorf("parent folder belongs to a different event: %w", domain.ErrParentNotFound)
			}
			if parentChanged {
				if err := s.ensureNoCycle(ctx, folder.ID, newParent); err != nil {
					return err
				}
			}
			newDepth = newParent.Depth + 1
			newPath = newParent.Path + "/" + newName
		} else {
			newDepth = 0
		}

		if len(newPath) > config.MaxFolderPathLength {
			return fmt.Errorf("%w: folder path exceeds %d characters", domain.ErrValidation, config.MaxFolderPathLength)
		}

		// Moving deeper can push descendants past the depth limit, so
		// check the deepest descendant before touching anything.
		if newDepth > folder.Depth {
			subtree, err := s.folderRepo.ListSubtree(ctx, folder.ID)
			if err != nil {
				return fmt.Errorf("failed to read subtree: %w", err)
			}
			maxRelative := 0
			for _, f := range subtree {
				if rel := f.Depth - folder.Depth; rel > maxRelative {
					maxRelative = rel
				}
			}
			if newDepth+maxRelative > config.MaxFolderDepth {
				return fmt.Errorf("subtree would reach depth %d, maximum is %d: %w",
					newDepth+maxRelative, config.MaxFolderDepth, domain.ErrDepthExceeded)
			}
		}

		oldParentID := folder.ParentID
		oldPath := folder.Path
		depthDelta := newDepth - folder.Depth

		folder.Name = newName
		folder.ParentID = newParentID
		folder.Path = newPath
		folder.Depth = newDepth
		if req.SortOrder != nil {
			folder.SortOrder = *req.SortOrder
		}
		folder.UpdatedAt = time.Now()

		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}

		if oldPath != newPath || depthDelta != 0 {
			if err := s.folderRepo.ShiftSubtree(ctx, folder.ID, depthDelta, oldPath, newPath); err != nil {
				return fmt.Errorf("failed to shift subtree: %w", err)
			}
		}

		if parentChanged {
			if oldParentID != nil {
				if err := s.folderRepo.AdjustCounts(ctx, *oldParentID, -1, 0); err != nil {
					return fmt.Errorf("failed to update old parent counters: %w", err)
				}
			}
			if newParentID != nil {
				if err := s.folderRepo.AdjustCounts(ctx, *newParentID, 1, 0); err != nil {
					return fmt.Errorf("failed to update new parent counters: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"event_id", folder.EventID,
		"path", folder.Path,
		"depth", folder.Depth,
	)

	return folder, nil
}

// DeleteFolder deletes a folder. The disposition decides what happens
// to contents: reject refuses non-empty folders, move_to_parent
// reassigns children and assets one level up, delete_all removes the
// whole subtree.
func (s *folderService) DeleteFolder(ctx context.Context, id string, disposition models.DeleteDisposition) error {
	if disposition == "" {
		disposition = models.DispositionReject
	}
	if !disposition.Valid() {
		return fmt.Errorf("%w: unknown disposition %q", domain.ErrValidation, disposition)
	}

	initial, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	eventID := initial.EventID

	var staleTokens []string
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		staleTokens = staleTokens[:0]

		if err := s.folderRepo.LockEventTree(ctx, eventID); err != nil {
			return fmt.Errorf("failed to lock event tree: %w", err)
		}

		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch disposition {
		case models.DispositionReject:
			return s.deleteEmpty(ctx, folder, &staleTokens)
		case models.DispositionMoveToParent:
			return s.deleteMoveToParent(ctx, folder, &staleTokens)
		case models.DispositionDeleteAll:
			return s.deleteSubtree(ctx, folder, &staleTokens)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, token := range staleTokens {
		s.cache.Remove(token)
	}

	s.logger.Info("folder deleted",
		"id", id,
		"event_id", eventID,
		"disposition", disposition,
	)

	return nil
}

// deleteEmpty removes a folder only if it has no children and no
// assets
func (s *folderService) deleteEmpty(ctx context.Context, folder *models.Folder, staleTokens *[]string) error {
	if folder.ChildFolderCount > 0 || folder.PhotoCount > 0 {
		return &domain.FolderNotEmptyError{
			FolderID:     folder.ID,
			ChildFolders: folder.ChildFolderCount,
			Assets:       folder.PhotoCount,
		}
	}

	if err := s.folderRepo.Delete(ctx, folder.ID); err != nil {
		return err
	}
	if folder.ShareToken != nil {
		*staleTokens = append(*staleTokens, *folder.ShareToken)
	}

	if folder.ParentID != nil {
		if err := s.folderRepo.AdjustCounts(ctx, *folder.ParentID, -1, 0); err != nil {
			return fmt.Errorf("failed to update parent counters: %w", err)
		}
	}
	return nil
}

// deleteMoveToParent re-parents the folder's children and assets to
// its parent, then removes the folder itself. Children of a root
// folder become roots; assets cannot exist outside a folder, so a root
// folder holding assets is rejected.
func (s *folderService) deleteMoveToParent(ctx context.Context, folder *models.Folder, staleTokens *[]string) error {
	if folder.ParentID == nil && folder.PhotoCount > 0 {
		return fmt.Errorf("%w: cannot move assets out of a root folder, use delete_all or move them first", domain.ErrValidation)
	}

	var parent *models.Folder
	if folder.ParentID != nil {
		var err error
		parent, err = s.folderRepo.GetByID(ctx, *folder.ParentID)
		if err != nil {
			return fmt.Errorf("failed to read parent folder: %w", err)
		}
	}

	children, err := s.folderRepo.ListChildren(ctx, folder.EventID, &folder.ID)
	if err != nil {
		return fmt.Errorf("failed to list children: %w", err)
	}

	for i := range children {
		child := &children[i]
		oldChildPath := child.Path

		child.ParentID = folder.ParentID
		child.Depth = folder.Depth
		if parent != nil {
			child.Path = parent.Path + "/" + child.Name
		} else {
			child.Path = child.Name
		}
		child.UpdatedAt = time.Now()

		if err := s.folderRepo.Update(ctx, child); err != nil {
			return fmt.Errorf("failed to re-parent folder %s: %w", child.ID, err)
		}
		if err := s.folderRepo.ShiftSubtree(ctx, child.ID, -1, oldChildPath, child.Path); err != nil {
			return fmt.Errorf("failed to shift subtree of %s: %w", child.ID, err)
		}
	}

	movedAssets := 0
	if folder.PhotoCount > 0 && folder.ParentID != nil {
		movedAssets, err = s.assetRepo.ReassignFolder(ctx, folder.ID, *folder.ParentID)
		if err != nil {
			return fmt.Errorf("failed to move assets: %w", err)
		}
	}

	if err := s.folderRepo.Delete(ctx, folder.ID); err != nil {
		return err
	}
	if folder.ShareToken != nil {
		*staleTokens = append(*staleTokens, *folder.ShareToken)
	}

	if folder.ParentID != nil {
		// The parent loses this folder but gains its children and
		// assets.
		if err := s.folderRepo.AdjustCounts(ctx, *folder.ParentID, len(children)-1, movedAssets); err != nil {
			return fmt.Errorf("failed to update parent counters: %w", err)
		}
	}
	return nil
}

// deleteSubtree cascades over the folder and all its descendants
func (s *folderService) deleteSubtree(ctx context.Context, folder *models.Folder, staleTokens *[]string) error {
	subtree, err := s.folderRepo.ListSubtree(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("failed to read subtree: %w", err)
	}
	for _, f := range subtree {
		if f.ShareToken != nil {
			*staleTokens = append(*staleTokens, *f.ShareToken)
		}
	}

	folders, assets, err := s.folderRepo.DeleteSubtree(ctx, folder.ID)
	if err != nil {
		return err
	}

	if folder.ParentID != nil {
		if err := s.folderRepo.AdjustCounts(ctx, *folder.ParentID, -1, 0); err != nil {
			return fmt.Errorf("failed to update parent counters: %w", err)
		}
	}

	s.logger.Debug("subtree removed",
		"root_id", folder.ID,
		"folders", folders,
		"assets", assets,
	)
	return nil
}

// ListFolders lists direct children of parentID, or root folders when
// parentID is nil
func (s *folderService) ListFolders(ctx context.Context, eventID string, parentID *string) ([]models.Folder, error) {
	if err := s.validator.ValidateEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.folderRepo.ListChildren(ctx, eventID, normalizeParentID(parentID))
}

// SearchFolders finds folders whose name contains the query,
// case-insensitive
func (s *folderService) SearchFolders(ctx context.Context, eventID, query string) ([]models.Folder, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search folders: %w", domain.ErrEmptyQuery)
	}

	if err := s.validator.ValidateEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.folderRepo.Search(ctx, eventID, query)
}

// GetFolderStats summarizes an event's hierarchy from stored counters
func (s *folderService) GetFolderStats(ctx context.Context, eventID string) (*models.FolderStats, error) {
	if err := s.validator.ValidateEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.folderRepo.Stats(ctx, eventID)
}

// ensureNoCycle walks the proposed parent's ancestor chain and rejects
// the move if folderID appears in it. The walk is bounded by the depth
// limit; a chain longer than that, or one that revisits a folder,
// means the stored hierarchy itself is broken and is reported as an
// internal error rather than a client error.
func (s *folderService) ensureNoCycle(ctx context.Context, folderID string, newParent *models.Folder) error {
	seen := make(map[string]bool)
	current := newParent
	for i := 0; i <= config.MaxFolderDepth; i++ {
		if current.ID == folderID {
			return fmt.Errorf("folder %s is in its own subtree: %w", folderID, domain.ErrCircularReference)
		}
		if seen[current.ID] {
			return fmt.Errorf("folder hierarchy corrupt: cycle through %s", current.ID)
		}
		seen[current.ID] = true

		if current.ParentID == nil {
			return nil
		}
		next, err := s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("folder hierarchy corrupt: ancestor %s unreadable: %v", *current.ParentID, err)
		}
		current = next
	}
	return fmt.Errorf("folder hierarchy corrupt: ancestor chain of %s exceeds depth limit", newParent.ID)
}

func (s *folderService) validateCreateRequest(req *gallerySvc.CreateFolderRequest) error {
	if err := validation.Validate(req.EventID,
		validation.Required.Error("event ID is required")); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := validation.Validate(strings.TrimSpace(req.Name), folderNameRules()...); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidName, err)
	}
	if req.SortOrder != nil && *req.SortOrder < 0 {
		return fmt.Errorf("%w: sort order cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (s *folderService) validateUpdateRequest(req *gallerySvc.UpdateFolderRequest) error {
	if req.Name == nil && !req.ParentID.Present && req.SortOrder == nil {
		return fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if req.Name != nil {
		if err := validation.Validate(strings.TrimSpace(*req.Name), folderNameRules()...); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidName, err)
		}
	}
	if req.SortOrder != nil && *req.SortOrder < 0 {
		return fmt.Errorf("%w: sort order cannot be negative", domain.ErrValidation)
	}
	return nil
}

// normalizeParentID treats an empty string the same as absent
func normalizeParentID(parentID *string) *string {
	if parentID == nil || *parentID == "" {
		return nil
	}
	return parentID
}

func sameParentID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
