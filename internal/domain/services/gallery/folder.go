package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// FolderService handles folder hierarchy business logic
type FolderService interface {
	// CreateFolder creates a folder under an optional parent, computing
	// its path and depth from the parent chain
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*gallery.Folder, error)

	// GetFolder retrieves a folder by ID
	GetFolder(ctx context.Context, id string) (*gallery.Folder, error)

	// UpdateFolder renames and/or moves a folder. Moves are
	// cycle-checked before anything mutates and rewrite depth and path
	// for the whole subtree.
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*gallery.Folder, error)

	// DeleteFolder deletes a folder according to the disposition:
	// reject non-empty folders, move contents to the parent, or cascade
	// over the subtree
	DeleteFolder(ctx context.Context, id string, disposition gallery.DeleteDisposition) error

	// ListFolders lists direct children of parentID (root folders when
	// nil) in sibling order
	ListFolders(ctx context.Context, eventID string, parentID *string) ([]gallery.Folder, error)

	// SearchFolders finds folders by case-insensitive name substring
	SearchFolders(ctx context.Context, eventID, query string) ([]gallery.Folder, error)

	// GetFolderStats summarizes an event's hierarchy from the stored
	// counters
	GetFolderStats(ctx context.Context, eventID string) (*gallery.FolderStats, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	EventID   string  `json:"event_id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id,omitempty"` // null for root level
	SortOrder *int    `json:"sort_order,omitempty"`
}

// OptionalParent tracks tri-state semantics for re-parenting (RFC 7396
// PATCH). Transport-agnostic; the handler maps from
// httputil.OptionalString.
//   - Present=false: field absent, folder stays where it is
//   - Present=true, Value=nil: move to root level
//   - Present=true, Value=&id: move under that folder
type OptionalParent struct {
	Present bool
	Value   *string
}

// UpdateFolderRequest represents a rename and/or move request
type UpdateFolderRequest struct {
	Name      *string `json:"name,omitempty"`
	ParentID  OptionalParent
	SortOrder *int `json:"sort_order,omitempty"`
}
