package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// NavigationService composes read views over the folder hierarchy
type NavigationService interface {
	// GetBreadcrumb returns the root-to-folder trail. A corrupt parent
	// chain (cycle or over-deep) fails with an internal error instead
	// of looping.
	GetBreadcrumb(ctx context.Context, folderID string) ([]gallery.Crumb, error)

	// GetHierarchyView returns everything needed to render a folder in
	// one call: the folder, its crumbs, and one page of children and
	// photos
	GetHierarchyView(ctx context.Context, folderID string, page, limit int) (*gallery.HierarchyView, error)
}
