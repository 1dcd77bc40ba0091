package gallery

import (
	"context"
	"time"

	"galeria/internal/domain/models/gallery"
)

// FolderRepository defines data access operations for gallery folders.
// Mutating methods participate in the caller's transaction when the
// context carries one.
type FolderRepository interface {
	// LockEventTree serializes hierarchy mutations for one event for
	// the rest of the current transaction. Services take it before
	// their validation reads so cycle checks and subtree rewrites
	// cannot interleave with concurrent re-parents. Stores that
	// serialize transactions themselves implement it as a no-op.
	LockEventTree(ctx context.Context, eventID string) error

	// Create inserts a new folder with its precomputed path and depth
	Create(ctx context.Context, folder *gallery.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*gallery.Folder, error)

	// Update persists name, parent, path, depth and sort order changes
	Update(ctx context.Context, folder *gallery.Folder) error

	// Delete removes a single folder row
	Delete(ctx context.Context, id string) error

	// DeleteSubtree removes a folder with all descendant folders and
	// their assets, returning how many of each were deleted
	DeleteSubtree(ctx context.Context, rootID string) (folders int, assets int, err error)

	// ListChildren lists direct children of parentID (root folders when
	// nil) ordered by sort_order, then name
	ListChildren(ctx context.Context, eventID string, parentID *string) ([]gallery.Folder, error)

	// ListSubtree returns the folder and every descendant, shallowest
	// first
	ListSubtree(ctx context.Context, rootID string) ([]gallery.Folder, error)

	// Search finds folders in an event whose name contains the query,
	// case-insensitively
	Search(ctx context.Context, eventID, query string) ([]gallery.Folder, error)

	// Stats aggregates the event's denormalized folder counters
	Stats(ctx context.Context, eventID string) (*gallery.FolderStats, error)

	// CountByEvent counts all folders in an event
	CountByEvent(ctx context.Context, eventID string) (int, error)

	// GetByShareToken retrieves a folder by its share token regardless
	// of publication state; callers decide whether it resolves
	GetByShareToken(ctx context.Context, token string) (*gallery.Folder, error)

	// AdjustCounts applies deltas to a folder's denormalized
	// child_folder_count and photo_count
	AdjustCounts(ctx context.Context, folderID string, childDelta, photoDelta int) error

	// ShiftSubtree rewrites depth and path for every descendant of
	// rootID after a move: depth += depthDelta, path prefix oldPrefix
	// replaced by newPrefix. The root itself is not touched.
	ShiftSubtree(ctx context.Context, rootID string, depthDelta int, oldPrefix, newPrefix string) error

	// SetPublication updates the publish state. A nil token clears it.
	SetPublication(ctx context.Context, folderID string, token *string, isPublished bool, publishedAt *time.Time) error
}
