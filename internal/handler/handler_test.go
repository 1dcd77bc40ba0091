package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "galeria/internal/domain/models/gallery"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/mediapolicy"
	"galeria/internal/repository/memory"
	service "galeria/internal/service/gallery"
	"galeria/internal/storage"
	"galeria/internal/tokencache"
)

// testAPI runs the real route table against the in-memory store
type testAPI struct {
	mux *http.ServeMux

	events  gallerySvc.EventService
	folders gallerySvc.FolderService
	assets  gallerySvc.AssetService
	publish gallerySvc.PublishService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	eventRepo := memory.NewEventRepository(store)
	folderRepo := memory.NewFolderRepository(store)
	assetRepo := memory.NewAssetRepository(store)

	validator := service.NewResourceValidator(eventRepo, folderRepo)
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

	events := service.NewEventService(eventRepo, folderRepo, logger)
	folders := service.NewFolderService(folderRepo, assetRepo, store, validator, cache, logger)
	assets := service.NewAssetService(assetRepo, folderRepo, store, validator, policy, signer, logger)
	publish := service.NewPublishService(folderRepo, assetRepo, cache, signer, "https://fotos.example.com", logger)
	nav := service.NewNavigationService(folderRepo, assetRepo, logger)

	eventHandler := NewEventHandler(events, logger)
	folderHandler := NewFolderHandler(folders, logger)
	assetHandler := NewAssetHandler(assets, logger)
	publishHandler := NewPublishHandler(publish, logger)
	shareHandler := NewShareHandler(publish, logger)
	navHandler := NewNavigationHandler(nav, logger)
	policyHandler := NewMediaPolicyHandler(policy, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("POST /api/events", eventHandler.CreateEvent)
	mux.HandleFunc("GET /api/events", eventHandler.ListEvents)
	mux.HandleFunc("GET /api/events/{id}", eventHandler.GetEvent)
	mux.HandleFunc("PATCH /api/events/{id}", eventHandler.UpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", eventHandler.DeleteEvent)
	mux.HandleFunc("GET /api/events/{id}/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/events/{id}/folders/search", folderHandler.SearchFolders)
	mux.HandleFunc("GET /api/events/{id}/folders/stats", folderHandler.GetFolderStats)

	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumb", navHandler.GetBreadcrumb)
	mux.HandleFunc("GET /api/folders/{id}/view", navHandler.GetHierarchyView)
	mux.HandleFunc("GET /api/folders/{id}/assets", assetHandler.ListAssets)
	mux.HandleFunc("POST /api/folders/{id}/publish", publishHandler.Publish)
	mux.HandleFunc("DELETE /api/folders/{id}/publish", publishHandler.Unpublish)
	mux.HandleFunc("POST /api/folders/{id}/publish/rotate", publishHandler.RotateToken)

	mux.HandleFunc("POST /api/assets", assetHandler.RegisterAsset)
	mux.HandleFunc("GET /api/assets/duplicates", assetHandler.FindDuplicate)
	mux.HandleFunc("POST /api/assets/duplicates", assetHandler.BatchFindDuplicates)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.GetAsset)
	mux.HandleFunc("PATCH /api/assets/{id}/status", assetHandler.UpdateAssetStatus)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.DeleteAsset)
	mux.HandleFunc("POST /api/assets/{id}/verify", assetHandler.VerifyAsset)
	mux.HandleFunc("GET /api/assets/{id}/download", assetHandler.DownloadOriginal)

	mux.HandleFunc("GET /api/media/policy", policyHandler.GetPolicy)
	mux.HandleFunc("GET /api/share/{token}", shareHandler.GetGallery)

	return &testAPI{
		mux:     mux,
		events:  events,
		folders: folders,
		assets:  assets,
		publish: publish,
	}
}

// do runs a request through the mux and returns the recorder
func (a *testAPI) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a JSON response body
func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func (a *testAPI) seedEvent(t *testing.T) *models.Event {
	t.Helper()
	event, err := a.events.CreateEvent(context.Background(), &gallerySvc.CreateEventRequest{
		Name:      "Fin de Curso 2026",
		School:    "Colegio San Martin",
		EventDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	return event
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestFolderEndpoints(t *testing.T) {
	api := newTestAPI(t)
	event := api.seedEvent(t)

	var root models.Folder
	rec := api.do(t, http.MethodPost, "/api/folders", map[string]interface{}{
		"event_id": event.ID,
		"name":     "Eventos",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &root)
	if root.Path != "Eventos" || root.Depth != 0 {
		t.Errorf("root path/depth = %q/%d, want Eventos/0", root.Path, root.Depth)
	}

	var child models.Folder
	rec = api.do(t, http.MethodPost, "/api/folders", map[string]interface{}{
		"event_id":  event.ID,
		"name":      "Sexto A",
		"parent_id": root.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child status = %d, body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &child)
	if child.Path != "Eventos/Sexto A" {
		t.Errorf("child path = %q, want Eventos/Sexto A", child.Path)
	}

	t.Run("duplicate sibling conflicts", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/folders", map[string]interface{}{
			"event_id":  event.ID,
			"name":      "Sexto A",
			"parent_id": root.ID,
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("invalid name rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/folders", map[string]interface{}{
			"event_id": event.ID,
			"name":     "con/barra",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rename", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/folders/"+child.ID, map[string]interface{}{
			"name": "Sexto B",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var updated models.Folder
		decode(t, rec, &updated)
		if updated.Name != "Sexto B" || updated.Path != "Eventos/Sexto B" {
			t.Errorf("renamed to %q path %q, want Sexto B at Eventos/Sexto B", updated.Name, updated.Path)
		}
	})

	t.Run("explicit null parent moves to root", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/folders/"+child.ID, map[string]interface{}{
			"parent_id": nil,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var moved models.Folder
		decode(t, rec, &moved)
		if moved.ParentID != nil || moved.Depth != 0 {
			t.Errorf("folder still nested: parent %v depth %d", moved.ParentID, moved.Depth)
		}
	})

	t.Run("list and stats", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/events/"+event.ID+"/folders", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d", rec.Code)
		}
		var roots []models.Folder
		decode(t, rec, &roots)
		if len(roots) != 2 {
			t.Errorf("roots = %d, want 2 after the move", len(roots))
		}

		rec = api.do(t, http.MethodGet, "/api/events/"+event.ID+"/folders/stats", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("stats status = %d", rec.Code)
		}
		var stats models.FolderStats
		decode(t, rec, &stats)
		if stats.TotalFolders != 2 {
			t.Errorf("TotalFolders = %d, want 2", stats.TotalFolders)
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/events/"+event.ID+"/folders/search?q=", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeleteFolderDispositions(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	event := api.seedEvent(t)

	parent, err := api.folders.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{EventID: event.ID, Name: "Actos"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := api.folders.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{EventID: event.ID, Name: "Grupales", ParentID: &parent.ID}); err != nil {
		t.Fatal(err)
	}

	t.Run("default reject returns the blocking counts", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/folders/"+parent.ID, nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		var problem map[string]interface{}
		decode(t, rec, &problem)
		if problem["child_folders"] != float64(1) {
			t.Errorf("child_folders = %v, want 1", problem["child_folders"])
		}
		if problem["assets"] != float64(0) {
			t.Errorf("assets = %v, want 0", problem["assets"])
		}
	})

	t.Run("unknown disposition rejected", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/folders/"+parent.ID+"?disposition=purge", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("delete_all removes the subtree", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/folders/"+parent.ID+"?disposition=delete_all", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		rec = api.do(t, http.MethodGet, "/api/folders/"+parent.ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", rec.Code)
		}
	})
}

func TestAssetEndpoints(t *testing.T) {
	api := newTestAPI(t)
	event := api.seedEvent(t)

	folder, err := api.folders.CreateFolder(context.Background(), &gallerySvc.CreateFolderRequest{
		EventID: event.ID,
		Name:    "Sexto A",
	})
	if err != nil {
		t.Fatal(err)
	}

	register := gallerySvc.RegisterAssetRequest{
		FolderID:     folder.ID,
		Filename:     "alumno-01.jpg",
		OriginalPath: "originals/alumno-01.jpg",
		Data:         []byte("contenido de la foto"),
		MimeType:     "image/jpeg",
	}

	var asset models.Asset
	rec := api.do(t, http.MethodPost, "/api/assets", register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &asset)
	if len(asset.Checksum) != 64 {
		t.Errorf("checksum = %q, want 64 hex chars", asset.Checksum)
	}

	t.Run("duplicate points at the surviving asset", func(t *testing.T) {
		dup := register
		dup.Filename = "copia.jpg"
		rec := api.do(t, http.MethodPost, "/api/assets", dup)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		var problem map[string]interface{}
		decode(t, rec, &problem)
		if problem["existing_asset_id"] != asset.ID {
			t.Errorf("existing_asset_id = %v, want %s", problem["existing_asset_id"], asset.ID)
		}
	})

	t.Run("single duplicate lookup", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/assets/duplicates?checksum="+asset.Checksum, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var match models.DuplicateMatch
		decode(t, rec, &match)
		if !match.Duplicate || match.AssetID != asset.ID {
			t.Errorf("match = %+v, want hit on %s", match, asset.ID)
		}
	})

	t.Run("batch duplicate lookup", func(t *testing.T) {
		missing := strings.Repeat("0", 64)
		rec := api.do(t, http.MethodPost, "/api/assets/duplicates", map[string]interface{}{
			"checksums": []string{asset.Checksum, missing},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Matches []models.DuplicateMatch `json:"matches"`
		}
		decode(t, rec, &resp)
		if len(resp.Matches) != 2 || !resp.Matches[0].Duplicate || resp.Matches[1].Duplicate {
			t.Errorf("matches = %+v, want [hit, miss]", resp.Matches)
		}
	})

	t.Run("illegal status transition conflicts", func(t *testing.T) {
		rec := api.do(t, http.MethodPatch, "/api/assets/"+asset.ID+"/status", map[string]interface{}{
			"status": "ready",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("verify detects corruption", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/assets/"+asset.ID+"/verify", map[string]interface{}{
			"data": []byte("contenido distinto"),
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp verifyAssetResponse
		decode(t, rec, &resp)
		if resp.Match {
			t.Error("Match = true for altered content")
		}
	})

	t.Run("download returns a signed link", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/assets/"+asset.ID+"/download", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var signed models.SignedAssetURL
		decode(t, rec, &signed)
		if !strings.Contains(signed.URL, "signature=") {
			t.Errorf("URL = %q, want a signed link", signed.URL)
		}
	})
}

func TestShareEndpoints(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	event := api.seedEvent(t)

	folder, err := api.folders.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{
		EventID: event.ID,
		Name:    "Sexto A",
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := api.do(t, http.MethodPost, "/api/folders/"+folder.ID+"/publish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result gallerySvc.PublishResult
	decode(t, rec, &result)
	if len(result.Token) != 64 {
		t.Fatalf("token = %q, want 64 hex chars", result.Token)
	}

	rec = api.do(t, http.MethodGet, "/api/share/"+result.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("share status = %d, body %s", rec.Code, rec.Body.String())
	}
	var gallery models.PublicGallery
	decode(t, rec, &gallery)
	if gallery.FolderID != folder.ID {
		t.Errorf("FolderID = %q, want %q", gallery.FolderID, folder.ID)
	}

	t.Run("revoked and unknown tokens read identically", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/folders/"+folder.ID+"/publish", nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("unpublish status = %d", rec.Code)
		}

		revoked := api.do(t, http.MethodGet, "/api/share/"+result.Token, nil)
		unknown := api.do(t, http.MethodGet, "/api/share/"+strings.Repeat("ab", 32), nil)
		if revoked.Code != http.StatusNotFound || unknown.Code != http.StatusNotFound {
			t.Fatalf("statuses = %d/%d, want 404/404", revoked.Code, unknown.Code)
		}
		if revoked.Body.String() != unknown.Body.String() {
			t.Errorf("revoked and unknown token responses differ: %q vs %q",
				revoked.Body.String(), unknown.Body.String())
		}
	})

	t.Run("rotation kills the old link", func(t *testing.T) {
		if _, err := api.publish.Publish(ctx, folder.ID, false); err != nil {
			t.Fatal(err)
		}
		rec := api.do(t, http.MethodPost, "/api/folders/"+folder.ID+"/publish/rotate", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("rotate status = %d", rec.Code)
		}
		var rotated gallerySvc.PublishResult
		decode(t, rec, &rotated)

		if rec := api.do(t, http.MethodGet, "/api/share/"+result.Token, nil); rec.Code != http.StatusNotFound {
			t.Errorf("old token status = %d, want 404", rec.Code)
		}
		if rec := api.do(t, http.MethodGet, "/api/share/"+rotated.Token, nil); rec.Code != http.StatusOK {
			t.Errorf("new token status = %d, want 200", rec.Code)
		}
	})
}

func TestNavigationEndpoints(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	event := api.seedEvent(t)

	root, err := api.folders.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{EventID: event.ID, Name: "Eventos"})
	if err != nil {
		t.Fatal(err)
	}
	child, err := api.folders.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{EventID: event.ID, Name: "Sexto A", ParentID: &root.ID})
	if err != nil {
		t.Fatal(err)
	}

	rec := api.do(t, http.MethodGet, "/api/folders/"+child.ID+"/breadcrumb", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("breadcrumb status = %d", rec.Code)
	}
	var crumbs struct {
		Breadcrumbs []models.Crumb `json:"breadcrumbs"`
	}
	decode(t, rec, &crumbs)
	if len(crumbs.Breadcrumbs) != 2 || crumbs.Breadcrumbs[0].Name != "Eventos" {
		t.Errorf("breadcrumbs = %+v, want [Eventos, Sexto A]", crumbs.Breadcrumbs)
	}

	rec = api.do(t, http.MethodGet, "/api/folders/"+root.ID+"/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("view status = %d", rec.Code)
	}
	var view models.HierarchyView
	decode(t, rec, &view)
	if len(view.ChildFolders) != 1 || view.ChildFolders[0].ID != child.ID {
		t.Errorf("child folders = %+v, want just %s", view.ChildFolders, child.ID)
	}
	if view.Limits.MaxDepth != 10 {
		t.Errorf("Limits.MaxDepth = %d, want 10", view.Limits.MaxDepth)
	}
}

func TestMediaPolicyEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/media/policy", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Policy   string              `json:"policy"`
		Types    []mediaTypeResponse `json:"types"`
		Variants []variantResponse   `json:"variants"`
	}
	decode(t, rec, &resp)

	if len(resp.Types) == 0 || resp.Types[0].MimeType != "image/jpeg" {
		t.Errorf("types = %+v, want image/jpeg first", resp.Types)
	}
	if len(resp.Variants) == 0 {
		t.Error("variants are empty")
	}
}

func TestEventValidationResponses(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"school": "Colegio San Martin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}

	var problem map[string]interface{}
	decode(t, rec, &problem)
	if problem["status"] != float64(http.StatusBadRequest) {
		t.Errorf("problem status = %v, want 400", problem["status"])
	}

	rec = api.do(t, http.MethodGet, "/api/events/desconocido", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown event status = %d, want 404", rec.Code)
	}
}
