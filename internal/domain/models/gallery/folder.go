package gallery

import (
	"time"
)

type Folder struct {
	ID               string     `json:"id" db:"id"`
	EventID          string     `json:"event_id" db:"event_id"`
	ParentID         *string    `json:"parent_id" db:"parent_id"` // NULL = root level
	Name             string     `json:"name" db:"name"`
	Path             string     `json:"path" db:"path"`   // Slash-joined ancestor names, e.g. "Eventos/Sexto A"
	Depth            int        `json:"depth" db:"depth"` // 0 for root folders
	SortOrder        int        `json:"sort_order" db:"sort_order"`
	ChildFolderCount int        `json:"child_folder_count" db:"child_folder_count"`
	PhotoCount       int        `json:"photo_count" db:"photo_count"`
	IsPublished      bool       `json:"is_published" db:"is_published"`
	ShareToken       *string    `json:"share_token,omitempty" db:"share_token"`
	PublishedAt      *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// DeleteDisposition controls what happens to a folder's contents on delete.
type DeleteDisposition string

const (
	// DispositionReject refuses to delete non-empty folders.
	DispositionReject DeleteDisposition = "reject"
	// DispositionMoveToParent re-parents children and photos before deleting.
	DispositionMoveToParent DeleteDisposition = "move_to_parent"
	// DispositionDeleteAll removes the folder together with its subtree.
	DispositionDeleteAll DeleteDisposition = "delete_all"
)

// Valid reports whether d is one of the known dispositions.
func (d DeleteDisposition) Valid() bool {
	switch d {
	case DispositionReject, DispositionMoveToParent, DispositionDeleteAll:
		return true
	}
	return false
}

// FolderStats aggregates per-event hierarchy numbers from the
// denormalized counters, without walking the tree.
type FolderStats struct {
	TotalFolders       int     `json:"total_folders"`
	MaxDepth           int     `json:"max_depth"`
	TotalPhotos        int     `json:"total_photos"`
	AvgPhotosPerFolder float64 `json:"avg_photos_per_folder"`
}
