package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"galeria/internal/auth"
	"galeria/internal/config"
	gallerySvc "galeria/internal/domain/services/gallery"
	"galeria/internal/mediapolicy"
	"galeria/internal/repository/postgres"
	postgresGallery "galeria/internal/repository/postgres/gallery"
	serviceGallery "galeria/internal/service/gallery"
	"galeria/internal/storage"
	"galeria/internal/tokencache"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data (for use with shell scripts)")
	clearData := flag.Bool("clear-data", false, "Clear all events, folders and assets (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing existing gallery data...")
		if err := clearGalleryData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Recreate the demo staff login so the seeded data is reachable
	// through the authenticated API
	if email := os.Getenv("SEED_STAFF_EMAIL"); email != "" {
		if err := ensureStaffUser(ctx, cfg, email, os.Getenv("SEED_STAFF_PASSWORD")); err != nil {
			log.Fatalf("Failed to create staff user: %v", err)
		}
		log.Printf("👤 Staff login ready: %s", email)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	eventRepo := postgresGallery.NewEventRepository(repoConfig)
	folderRepo := postgresGallery.NewFolderRepository(repoConfig)
	assetRepo := postgresGallery.NewAssetRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	validator := serviceGallery.NewResourceValidator(eventRepo, folderRepo)
	shareCache := tokencache.New(cfg.ShareCacheSize, cfg.ShareCacheTTL)
	policyRegistry, err := mediapolicy.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize media policy registry: %v", err)
	}
	signer, err := storage.NewSigner(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage signer: %v", err)
	}

	eventService := serviceGallery.NewEventService(eventRepo, folderRepo, logger)
	folderService := serviceGallery.NewFolderService(folderRepo, assetRepo, txManager, validator, shareCache, logger)
	assetService := serviceGallery.NewAssetService(assetRepo, folderRepo, txManager, validator, policyRegistry, signer, logger)
	publishService := serviceGallery.NewPublishService(folderRepo, assetRepo, shareCache, signer, cfg.PublicBaseURL, logger)

	// Clear existing data
	log.Println("⚠️  Clearing existing gallery data...")
	if err := clearGalleryData(ctx, pool, tables); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	// Seed demo event
	log.Println("📅 Creating demo event...")
	event, err := eventService.CreateEvent(ctx, &gallerySvc.CreateEventRequest{
		Name:      "Fall Picture Day 2025",
		School:    "Lincoln Elementary",
		EventDate: time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		log.Fatalf("Failed to create demo event: %v", err)
	}
	log.Printf("✅ Created event: %s (ID: %s)", event.Name, event.ID)

	// Seed folder tree
	log.Println("📁 Seeding folder hierarchy...")
	folderIDs := make(map[string]string)
	for i, f := range getSeedFolders() {
		folder, err := folderService.CreateFolder(ctx, &gallerySvc.CreateFolderRequest{
			EventID:   event.ID,
			Name:      f.name,
			ParentID:  lookupParent(folderIDs, f.parent),
			SortOrder: intPtr(f.sortOrder),
		})
		if err != nil {
			log.Fatalf("❌ Failed to create folder '%s': %v", f.path(), err)
		}
		folderIDs[f.path()] = folder.ID
		log.Printf("✅ Created folder %d: %s (depth %d)", i+1, folder.Path, folder.Depth)
	}

	// Seed assets
	log.Println("📷 Seeding assets...")
	for i, a := range getSeedAssets() {
		folderID, ok := folderIDs[a.folder]
		if !ok {
			log.Fatalf("❌ Seed asset '%s' references unknown folder '%s'", a.filename, a.folder)
		}

		data := []byte(fmt.Sprintf("galeria demo asset %s/%s", a.folder, a.filename))
		asset, err := assetService.RegisterAsset(ctx, &gallerySvc.RegisterAssetRequest{
			FolderID:     folderID,
			Filename:     a.filename,
			OriginalPath: fmt.Sprintf("originals/%s/%s", event.ID, a.filename),
			Data:         data,
			MimeType:     "image/jpeg",
		})
		if err != nil {
			log.Fatalf("❌ Failed to register asset '%s': %v", a.filename, err)
		}

		// Walk the asset through the processing pipeline to ready
		if _, err := assetService.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{
			Status: "processing",
		}); err != nil {
			log.Fatalf("❌ Failed to advance asset '%s' to processing: %v", a.filename, err)
		}
		if _, err := assetService.UpdateAssetStatus(ctx, asset.ID, &gallerySvc.UpdateAssetStatusRequest{
			Status:      "ready",
			PreviewPath: strPtr(fmt.Sprintf("previews/%s.webp", asset.ID)),
			Width:       intPtr(a.width),
			Height:      intPtr(a.height),
		}); err != nil {
			log.Fatalf("❌ Failed to advance asset '%s' to ready: %v", a.filename, err)
		}

		log.Printf("✅ Registered asset %d: %s (checksum %s...)", i+1, a.filename, asset.Checksum[:12])
	}

	// Publish a gallery so the share flow is demonstrable end to end
	log.Println("🔗 Publishing demo gallery...")
	result, err := publishService.Publish(ctx, folderIDs["Grade 3/Class 3A/Portraits"], false)
	if err != nil {
		log.Fatalf("Failed to publish demo gallery: %v", err)
	}
	log.Printf("✅ Published %s", result.Folder.Path)
	log.Printf("🔗 Share link: %s", result.ShareURL)

	log.Println("🎉 Seeding complete!")
}

// ensureStaffUser recreates the demo staff account through the Supabase
// admin API. Delete-then-create keeps the password in sync with the env.
func ensureStaffUser(ctx context.Context, cfg *config.Config, email, password string) error {
	if password == "" {
		return fmt.Errorf("SEED_STAFF_PASSWORD must be set when SEED_STAFF_EMAIL is")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set to manage users")
	}

	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
	if err := admin.DeleteUserByEmail(ctx, email); err != nil {
		return fmt.Errorf("delete existing user: %w", err)
	}
	if _, err := admin.CreateUser(ctx, email, password); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create events table
	createEvents := `
		CREATE TABLE IF NOT EXISTS ` + tables.Events + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			school TEXT NOT NULL DEFAULT '',
			event_date TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createEvents); err != nil {
		return err
	}

	// Create folders table. Foreign keys deliberately carry no cascade:
	// the API deletes subtrees itself and the constraints are the
	// backstop against dangling rows.
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			event_id UUID NOT NULL REFERENCES ` + tables.Events + `(id),
			parent_id UUID REFERENCES ` + tables.Folders + `(id),
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			depth INTEGER NOT NULL DEFAULT 0 CHECK (depth >= 0 AND depth <= 10),
			sort_order INTEGER NOT NULL DEFAULT 0,
			child_folder_count INTEGER NOT NULL DEFAULT 0,
			photo_count INTEGER NOT NULL DEFAULT 0,
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			share_token TEXT,
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(event_id, parent_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	// Create assets table
	createAssets := `
		CREATE TABLE IF NOT EXISTS ` + tables.Assets + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			folder_id UUID NOT NULL REFERENCES ` + tables.Folders + `(id),
			filename TEXT NOT NULL,
			original_path TEXT NOT NULL,
			preview_path TEXT,
			checksum TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL,
			width INTEGER,
			height INTEGER,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createAssets); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_event_parent ON ` + tables.Folders + `(event_id, parent_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_root_unique ON ` + tables.Folders + `(event_id, name) WHERE parent_id IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `folders_share_token ON ` + tables.Folders + `(share_token) WHERE share_token IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_checksum ON ` + tables.Assets + `(checksum)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_folder ON ` + tables.Assets + `(folder_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Assets,
		tables.Folders,
		tables.Events,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearGalleryData removes all assets, folders and events. Children go
// first so the foreign keys stay satisfied.
func clearGalleryData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Assets); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Events); err != nil {
		return err
	}
	return nil
}

type seedFolder struct {
	parent    string // path of the parent folder, "" for root level
	name      string
	sortOrder int
}

func (f seedFolder) path() string {
	if f.parent == "" {
		return f.name
	}
	return f.parent + "/" + f.name
}

// getSeedFolders returns the demo hierarchy in creation order: parents
// always precede their children.
func getSeedFolders() []seedFolder {
	return []seedFolder{
		{parent: "", name: "Grade 3", sortOrder: 1},
		{parent: "Grade 3", name: "Class 3A", sortOrder: 1},
		{parent: "Grade 3/Class 3A", name: "Portraits", sortOrder: 1},
		{parent: "Grade 3/Class 3A", name: "Groups", sortOrder: 2},
		{parent: "Grade 3", name: "Class 3B", sortOrder: 2},
		{parent: "Grade 3/Class 3B", name: "Portraits", sortOrder: 1},
		{parent: "", name: "Grade 4", sortOrder: 2},
		{parent: "Grade 4", name: "Class 4A", sortOrder: 1},
		{parent: "", name: "Staff", sortOrder: 3},
	}
}

type seedAsset struct {
	folder   string // path of the owning folder
	filename string
	width    int
	height   int
}

func getSeedAssets() []seedAsset {
	return []seedAsset{
		{folder: "Grade 3/Class 3A/Portraits", filename: "IMG_0001.jpg", width: 4000, height: 6000},
		{folder: "Grade 3/Class 3A/Portraits", filename: "IMG_0002.jpg", width: 4000, height: 6000},
		{folder: "Grade 3/Class 3A/Portraits", filename: "IMG_0003.jpg", width: 4000, height: 6000},
		{folder: "Grade 3/Class 3A/Groups", filename: "IMG_0050.jpg", width: 6000, height: 4000},
		{folder: "Grade 3/Class 3B/Portraits", filename: "IMG_0101.jpg", width: 4000, height: 6000},
		{folder: "Grade 3/Class 3B/Portraits", filename: "IMG_0102.jpg", width: 4000, height: 6000},
		{folder: "Grade 4/Class 4A", filename: "IMG_0201.jpg", width: 4000, height: 6000},
		{folder: "Staff", filename: "IMG_0301.jpg", width: 4000, height: 6000},
	}
}

// lookupParent maps a seed parent path to the created folder's ID
func lookupParent(folderIDs map[string]string, parent string) *string {
	if parent == "" {
		return nil
	}
	id, ok := folderIDs[parent]
	if !ok {
		log.Fatalf("❌ Seed folder references unknown parent '%s'", parent)
	}
	return &id
}

// strPtr returns a pointer to a string
func strPtr(s string) *string {
	return &s
}

// intPtr returns a pointer to an int
func intPtr(n int) *int {
	return &n
}
