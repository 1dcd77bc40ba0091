package gallery

import (
	"context"

	"galeria/internal/domain/models/gallery"
)

// PublishService manages the share-token lifecycle of folders
type PublishService interface {
	// Publish makes a folder publicly reachable. Publishing an
	// already-published folder returns the existing token unchanged;
	// rotation must be requested explicitly.
	Publish(ctx context.Context, folderID string, rotate bool) (*PublishResult, error)

	// Unpublish revokes public access immediately. The token is
	// retained so a later republish restores the same link.
	Unpublish(ctx context.Context, folderID string) error

	// RotateToken replaces the share token. The old token stops
	// resolving the moment the call returns.
	RotateToken(ctx context.Context, folderID string) (*PublishResult, error)

	// ResolveShareToken maps a token to its published folder. Unknown
	// tokens and unpublished folders fail identically with
	// domain.ErrInvalidShareToken.
	ResolveShareToken(ctx context.Context, token string) (*gallery.Folder, error)

	// GetPublicGallery resolves a token and composes the public view
	// with one page of assets
	GetPublicGallery(ctx context.Context, token string, page, limit int) (*gallery.PublicGallery, error)
}

// PublishResult carries the publication outcome back to the caller
type PublishResult struct {
	Folder   *gallery.Folder `json:"folder"`
	Token    string          `json:"token"`
	ShareURL string          `json:"share_url"`
	Rotated  bool            `json:"rotated"`
}
