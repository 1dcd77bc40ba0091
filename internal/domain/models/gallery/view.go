package gallery

import (
	"time"
)

// Crumb is one entry on the root-to-folder trail.
type Crumb struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// NavigationLimits carries the hierarchy bounds clients need to size
// their navigation state. They mirror the server-side limits so the
// two cannot drift apart.
type NavigationLimits struct {
	MaxDepth       int `json:"max_depth"`
	MaxHistorySize int `json:"max_history_size"`
}

// HierarchyView is the single-call composition for rendering a folder:
// the folder itself, its crumbs, and one page of children and photos.
type HierarchyView struct {
	Folder       *Folder          `json:"folder"`
	Breadcrumbs  []Crumb          `json:"breadcrumbs"`
	ChildFolders []*Folder        `json:"child_folders"`
	Assets       []*Asset         `json:"assets"`
	TotalAssets  int              `json:"total_assets"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	Limits       NavigationLimits `json:"limits"`
}

// PublicGallery is the token-resolved view served to families. It
// exposes nothing about the event beyond the folder being browsed.
type PublicGallery struct {
	FolderID    string         `json:"folder_id"`
	Name        string         `json:"name"`
	PhotoCount  int            `json:"photo_count"`
	PublishedAt time.Time      `json:"published_at"`
	Assets      []*PublicAsset `json:"assets"`
	TotalAssets int            `json:"total_assets"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
}

// PublicAsset strips an asset down to what public galleries render.
// Storage paths and checksums stay private; preview URLs are short-lived
// signed links minted at resolve time.
type PublicAsset struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	PreviewURL string `json:"preview_url,omitempty"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`
}

// SignedAssetURL is a time-limited download link for an original file.
type SignedAssetURL struct {
	AssetID   string    `json:"asset_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
