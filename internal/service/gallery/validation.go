package gallery

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"galeria/internal/config"
	galleryRepo "galeria/internal/domain/repositories/gallery"
)

// folderNameRules are the shared validation rules for folder names.
// Slashes are forbidden because the materialized path joins ancestor
// names with "/".
var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("folder name is required"),
		validation.Length(1, config.MaxFolderNameLength).Error(
			fmt.Sprintf("folder name must be between 1 and %d characters", config.MaxFolderNameLength)),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	}
}

// ResourceValidator validates that parent resources exist before
// allowing operations on child resources
type ResourceValidator struct {
	eventRepo  galleryRepo.EventRepository
	folderRepo galleryRepo.FolderRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(
	eventRepo galleryRepo.EventRepository,
	folderRepo galleryRepo.FolderRepository,
) *ResourceValidator {
	return &ResourceValidator{
		eventRepo:  eventRepo,
		folderRepo: folderRepo,
	}
}

// ValidateEvent ensures an event exists.
// Returns domain.ErrEventNotFound if it doesn't.
func (v *ResourceValidator) ValidateEvent(ctx context.Context, eventID string) error {
	_, err := v.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	return nil
}

// ValidateFolder ensures a folder exists.
// Returns domain.ErrFolderNotFound if it doesn't.
func (v *ResourceValidator) ValidateFolder(ctx context.Context, folderID string) error {
	_, err := v.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}
