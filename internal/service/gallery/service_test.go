package gallery

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/mediapolicy"
	"galeria/internal/repository/memory"
	"galeria/internal/storage"
	"galeria/internal/tokencache"
)

// testEnv wires every service against the in-memory store, the same
// way main wires them against postgres
type testEnv struct {
	store      *memory.Store
	cache      *tokencache.Cache
	folderRepo galleryRepo.FolderRepository
	assetRepo  galleryRepo.AssetRepository

	events  gallerySvc.EventService
	folders gallerySvc.FolderService
	assets  gallerySvc.AssetService
	publish gallerySvc.PublishService
	nav     gallerySvc.NavigationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	eventRepo := memory.NewEventRepository(store)
	folderRepo := memory.NewFolderRepository(store)
	assetRepo := memory.NewAssetRepository(store)

	validator := NewResourceValidator(eventRepo, folderRepo)
	cache := tokencache.New(64, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	policy, err := mediapolicy.NewRegistry()
	if err != nil {
		t.Fatalf("failed to load media policy: %v", err)
	}

	signer, err := storage.NewLocalSigner("https://fotos.example.com", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	return &testEnv{
		store:      store,
		cache:      cache,
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		events:     NewEventService(eventRepo, folderRepo, logger),
		folders:    NewFolderService(folderRepo, assetRepo, store, validator, cache, logger),
		assets:     NewAssetService(assetRepo, folderRepo, store, validator, policy, signer, logger),
		publish:    NewPublishService(folderRepo, assetRepo, cache, signer, "https://fotos.example.com", logger),
		nav:        NewNavigationService(folderRepo, assetRepo, logger),
	}
}

func (e *testEnv) mustEvent(t *testing.T, name string) *models.Event {
	t.Helper()

	event, err := e.events.CreateEvent(context.Background(), &gallerySvc.CreateEventRequest{
		Name:      name,
		School:    "Colegio San Martin",
		EventDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to create event %q: %v", name, err)
	}
	return event
}

func (e *testEnv) mustFolder(t *testing.T, eventID, name string, parentID *string) *models.Folder {
	t.Helper()

	folder, err := e.folders.CreateFolder(context.Background(), &gallerySvc.CreateFolderRequest{
		EventID:  eventID,
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("failed to create folder %q: %v", name, err)
	}
	return folder
}

func (e *testEnv) mustAsset(t *testing.T, folderID, filename string, data []byte) *models.Asset {
	t.Helper()

	asset, err := e.assets.RegisterAsset(context.Background(), &gallerySvc.RegisterAssetRequest{
		FolderID:     folderID,
		Filename:     filename,
		OriginalPath: "originals/" + filename,
		Data:         data,
		MimeType:     "image/jpeg",
	})
	if err != nil {
		t.Fatalf("failed to register asset %q: %v", filename, err)
	}
	return asset
}

// reloadFolder reads a folder's current persisted state
func (e *testEnv) reloadFolder(t *testing.T, id string) *models.Folder {
	t.Helper()

	folder, err := e.folderRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload folder %s: %v", id, err)
	}
	return folder
}

func strPtr(s string) *string { return &s }
