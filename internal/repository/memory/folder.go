package memory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"galeria/internal/config"
	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
)

// FolderRepository implements galleryRepo.FolderRepository on a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) galleryRepo.FolderRepository {
	return &FolderRepository{store: store}
}

// LockEventTree is a no-op: the store mutex already serializes whole
// transactions, which is strictly stronger than the per-event advisory
// lock the production adapter takes.
func (r *FolderRepository) LockEventTree(ctx context.Context, eventID string) error {
	return nil
}

// Create inserts a new folder, enforcing the same constraints the
// database schema does: event and parent must exist, sibling names are
// unique, depth stays within bounds.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.events[folder.EventID]; !ok {
		return fmt.Errorf("event %s: %w", folder.EventID, domain.ErrEventNotFound)
	}
	if folder.ParentID != nil {
		if _, ok := r.store.folders[*folder.ParentID]; !ok {
			return fmt.Errorf("create folder: %w", domain.ErrParentNotFound)
		}
	}
	if folder.Depth < 0 || folder.Depth > config.MaxFolderDepth {
		return fmt.Errorf("create folder: %w", domain.ErrDepthExceeded)
	}
	if existing := r.findSibling(folder.EventID, folder.ParentID, folder.Name, ""); existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder '%s' already exists here", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	r.store.folders[folder.ID] = cloneFolder(folder)
	return nil
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	defer r.store.lock(ctx)()

	folder, ok := r.store.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}
	return cloneFolder(folder), nil
}

// Update persists name, parent, path, depth and sort order changes,
// writing exactly the fields the production adapter writes
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.folders[folder.ID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound)
	}
	if folder.ParentID != nil {
		if _, parentOK := r.store.folders[*folder.ParentID]; !parentOK {
			return fmt.Errorf("update folder: %w", domain.ErrParentNotFound)
		}
	}
	if folder.Depth < 0 || folder.Depth > config.MaxFolderDepth {
		return fmt.Errorf("update folder: %w", domain.ErrDepthExceeded)
	}
	if existing := r.findSibling(stored.EventID, folder.ParentID, folder.Name, folder.ID); existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder '%s' already exists here", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	stored.Name = folder.Name
	stored.ParentID = clonePtr(folder.ParentID)
	stored.Path = folder.Path
	stored.Depth = folder.Depth
	stored.SortOrder = folder.SortOrder
	stored.UpdatedAt = folder.UpdatedAt
	return nil
}

// Delete removes a single folder row, rejecting folders that still
// have children or assets the way the foreign keys would
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}
	for _, f := range r.store.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return fmt.Errorf("folder %s still has contents: %w", id, domain.ErrConflict)
		}
	}
	for _, a := range r.store.assets {
		if a.FolderID == id {
			return fmt.Errorf("folder %s still has contents: %w", id, domain.ErrConflict)
		}
	}

	delete(r.store.folders, id)
	return nil
}

// DeleteSubtree removes a folder with all descendant folders and their
// assets
func (r *FolderRepository) DeleteSubtree(ctx context.Context, rootID string) (int, int, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[rootID]; !ok {
		return 0, 0, fmt.Errorf("folder %s: %w", rootID, domain.ErrFolderNotFound)
	}

	ids := r.subtreeIDs(rootID)
	inSubtree := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSubtree[id] = true
	}

	assets := 0
	for id, a := range r.store.assets {
		if inSubtree[a.FolderID] {
			delete(r.store.assets, id)
			assets++
		}
	}
	for _, id := range ids {
		delete(r.store.folders, id)
	}

	return len(ids), assets, nil
}

// ListChildren lists direct children ordered by sort_order, then name
func (r *FolderRepository) ListChildren(ctx context.Context, eventID string, parentID *string) ([]models.Folder, error) {
	defer r.store.lock(ctx)()

	folders := []models.Folder{}
	for _, f := range r.store.folders {
		if f.EventID != eventID {
			continue
		}
		if !sameParent(f.ParentID, parentID) {
			continue
		}
		folders = append(folders, *cloneFolder(f))
	}
	sortSiblings(folders)
	return folders, nil
}

// ListSubtree returns the folder and every descendant, shallowest
// first
func (r *FolderRepository) ListSubtree(ctx context.Context, rootID string) ([]models.Folder, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[rootID]; !ok {
		return nil, fmt.Errorf("folder %s: %w", rootID, domain.ErrFolderNotFound)
	}

	folders := []models.Folder{}
	for _, id := range r.subtreeIDs(rootID) {
		folders = append(folders, *cloneFolder(r.store.folders[id]))
	}
	return folders, nil
}

// Search finds folders by case-insensitive name substring, ordered by
// path
func (r *FolderRepository) Search(ctx context.Context, eventID, query string) ([]models.Folder, error) {
	defer r.store.lock(ctx)()

	needle := strings.ToLower(query)
	folders := []models.Folder{}
	for _, f := range r.store.folders {
		if f.EventID != eventID {
			continue
		}
		if strings.Contains(strings.ToLower(f.Name), needle) {
			folders = append(folders, *cloneFolder(f))
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Path < folders[j].Path
	})
	return folders, nil
}

// Stats aggregates the event's denormalized folder counters
func (r *FolderRepository) Stats(ctx context.Context, eventID string) (*models.FolderStats, error) {
	defer r.store.lock(ctx)()

	var stats models.FolderStats
	for _, f := range r.store.folders {
		if f.EventID != eventID {
			continue
		}
		stats.TotalFolders++
		stats.TotalPhotos += f.PhotoCount
		if f.Depth > stats.MaxDepth {
			stats.MaxDepth = f.Depth
		}
	}
	if stats.TotalFolders > 0 {
		stats.AvgPhotosPerFolder = float64(stats.TotalPhotos) / float64(stats.TotalFolders)
	}
	return &stats, nil
}

// CountByEvent counts all folders in an event
func (r *FolderRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	defer r.store.lock(ctx)()

	count := 0
	for _, f := range r.store.folders {
		if f.EventID == eventID {
			count++
		}
	}
	return count, nil
}

// GetByShareToken retrieves a folder by its share token. Tokens are
// compared in constant time and the scan always visits every folder,
// so lookup latency reveals nothing about stored tokens.
func (r *FolderRepository) GetByShareToken(ctx context.Context, token string) (*models.Folder, error) {
	defer r.store.lock(ctx)()

	tokenBytes := []byte(token)
	var found *models.Folder
	for _, f := range r.store.folders {
		if f.ShareToken == nil {
			continue
		}
		if subtle.ConstantTimeCompare(tokenBytes, []byte(*f.ShareToken)) == 1 {
			found = f
		}
	}
	if found == nil {
		return nil, fmt.Errorf("resolve share token: %w", domain.ErrInvalidShareToken)
	}
	return cloneFolder(found), nil
}

// AdjustCounts applies deltas to a folder's denormalized counters
func (r *FolderRepository) AdjustCounts(ctx context.Context, folderID string, childDelta, photoDelta int) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrFolderNotFound)
	}
	stored.ChildFolderCount += childDelta
	stored.PhotoCount += photoDelta
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// ShiftSubtree rewrites depth and path for every descendant of rootID
func (r *FolderRepository) ShiftSubtree(ctx context.Context, rootID string, depthDelta int, oldPrefix, newPrefix string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.folders[rootID]; !ok {
		return fmt.Errorf("folder %s: %w", rootID, domain.ErrFolderNotFound)
	}

	now := time.Now().UTC()
	for _, id := range r.subtreeIDs(rootID) {
		if id == rootID {
			continue
		}
		f := r.store.folders[id]
		newDepth := f.Depth + depthDelta
		if newDepth < 0 || newDepth > config.MaxFolderDepth {
			return fmt.Errorf("shift subtree: %w", domain.ErrDepthExceeded)
		}
		f.Depth = newDepth
		f.Path = newPrefix + strings.TrimPrefix(f.Path, oldPrefix)
		f.UpdatedAt = now
	}
	return nil
}

// SetPublication updates the publish state. A nil token clears it.
func (r *FolderRepository) SetPublication(ctx context.Context, folderID string, token *string, isPublished bool, publishedAt *time.Time) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrFolderNotFound)
	}
	if token != nil {
		for id, f := range r.store.folders {
			if id != folderID && f.ShareToken != nil && *f.ShareToken == *token {
				return fmt.Errorf("share token collision: %w", domain.ErrConflict)
			}
		}
	}
	stored.ShareToken = clonePtr(token)
	stored.IsPublished = isPublished
	stored.PublishedAt = clonePtr(publishedAt)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// subtreeIDs walks the tree breadth-first with an explicit worklist,
// returning rootID and every descendant, shallowest first. Children
// are visited in sibling order so results are deterministic.
func (r *FolderRepository) subtreeIDs(rootID string) []string {
	ids := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children := []models.Folder{}
		for _, f := range r.store.folders {
			if f.ParentID != nil && *f.ParentID == current {
				children = append(children, *f)
			}
		}
		sortSiblings(children)
		for _, c := range children {
			ids = append(ids, c.ID)
			queue = append(queue, c.ID)
		}
	}
	return ids
}

// findSibling returns the folder occupying (eventID, parentID, name),
// excluding excludeID, or nil
func (r *FolderRepository) findSibling(eventID string, parentID *string, name, excludeID string) *models.Folder {
	for _, f := range r.store.folders {
		if f.ID == excludeID || f.EventID != eventID || f.Name != name {
			continue
		}
		if sameParent(f.ParentID, parentID) {
			return f
		}
	}
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortSiblings(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].SortOrder != folders[j].SortOrder {
			return folders[i].SortOrder < folders[j].SortOrder
		}
		return folders[i].Name < folders[j].Name
	})
}
