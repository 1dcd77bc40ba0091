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
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
)

// eventService implements the EventService interface
type eventService struct {
	eventRepo  galleryRepo.EventRepository
	folderRepo galleryRepo.FolderRepository
	logger     *slog.Logger
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo galleryRepo.EventRepository,
	folderRepo galleryRepo.FolderRepository,
	logger *slog.Logger,
) gallerySvc.EventService {
	return &eventService{
		eventRepo:  eventRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// CreateEvent creates a new event in draft status
func (s *eventService) CreateEvent(ctx context.Context, req *gallerySvc.CreateEventRequest) (*models.Event, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	event := &models.Event{
		Name:      strings.TrimSpace(req.Name),
		School:    strings.TrimSpace(req.School),
		EventDate: req.EventDate,
		Status:    models.EventStatusDraft,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		"id", event.ID,
		"name", event.Name,
		"school", event.School,
	)

	return event, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents retrieves all events, newest first
func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.List(ctx)
}

// UpdateEvent applies a partial update to an event
func (s *eventService) UpdateEvent(ctx context.Context, id string, req *gallerySvc.UpdateEventRequest) (*models.Event, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = strings.TrimSpace(*req.Name)
	}
	if req.School != nil {
		event.School = strings.TrimSpace(*req.School)
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("event updated",
		"id", event.ID,
		"name", event.Name,
		"status", event.Status,
	)

	return event, nil
}

// DeleteEvent deletes an event. Events that still contain folders
// cannot be deleted.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.eventRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.folderRepo.CountByEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count folders: %w", err)
	}
	if count > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("event still contains %d folders", count),
			ResourceType: "event",
			ResourceID:   id,
		}
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("event deleted", "id", id)

	return nil
}

func (s *eventService) validateCreateRequest(req *gallerySvc.CreateEventRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required.Error("event name is required"),
			validation.Length(1, config.MaxEventNameLength).Error(
				fmt.Sprintf("event name must be between 1 and %d characters", config.MaxEventNameLength)),
		),
		validation.Field(&req.School,
			validation.Required.Error("school name is required"),
			validation.Length(1, config.MaxSchoolNameLength).Error(
				fmt.Sprintf("school name must be between 1 and %d characters", config.MaxSchoolNameLength)),
		),
		validation.Field(&req.EventDate,
			validation.Required.Error("event date is required"),
		),
	)
}

func (s *eventService) validateUpdateRequest(req *gallerySvc.UpdateEventRequest) error {
	if req.Name == nil && req.School == nil && req.EventDate == nil && req.Status == nil {
		return fmt.Errorf("at least one field must be provided")
	}
	if req.Name != nil && (strings.TrimSpace(*req.Name) == "" || len(*req.Name) > config.MaxEventNameLength) {
		return fmt.Errorf("event name must be between 1 and %d characters", config.MaxEventNameLength)
	}
	if req.School != nil && (strings.TrimSpace(*req.School) == "" || len(*req.School) > config.MaxSchoolNameLength) {
		return fmt.Errorf("school name must be between 1 and %d characters", config.MaxSchoolNameLength)
	}
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("invalid event status %q", *req.Status)
	}
	return nil
}
