package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"galeria/internal/auth"
	"galeria/internal/config"
	"galeria/internal/handler"
	"galeria/internal/mediapolicy"
	"galeria/internal/middleware"
	"galeria/internal/repository/postgres"
	postgresGallery "galeria/internal/repository/postgres/gallery"
	serviceGallery "galeria/internal/service/gallery"
	"galeria/internal/storage"
	"galeria/internal/tokencache"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging. Debug defaults on outside prod and can
	// be forced either way with DEBUG.
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

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

	// Create validator (event and parent-folder existence checks)
	validator := serviceGallery.NewResourceValidator(eventRepo, folderRepo)

	// Share-token cache: public gallery lookups skip the database while
	// an entry is fresh
	shareCache := tokencache.New(cfg.ShareCacheSize, cfg.ShareCacheTTL)

	// Media policy registry (accepted upload types, preview variants)
	policyRegistry, err := mediapolicy.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize media policy registry: %v", err)
	}
	logger.Info("media policy registry initialized")

	// Signed-URL provider for originals and previews
	signer, err := storage.NewSigner(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage signer: %v", err)
	}
	logger.Info("storage signer ready", "provider", cfg.StorageProvider)

	// Create gallery services
	eventService := serviceGallery.NewEventService(eventRepo, folderRepo, logger)
	folderService := serviceGallery.NewFolderService(folderRepo, assetRepo, txManager, validator, shareCache, logger)
	assetService := serviceGallery.NewAssetService(assetRepo, folderRepo, txManager, validator, policyRegistry, signer, logger)
	publishService := serviceGallery.NewPublishService(folderRepo, assetRepo, shareCache, signer, cfg.PublicBaseURL, logger)
	navService := serviceGallery.NewNavigationService(folderRepo, assetRepo, logger)

	// Create handlers
	eventHandler := handler.NewEventHandler(eventService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	assetHandler := handler.NewAssetHandler(assetService, logger)
	publishHandler := handler.NewPublishHandler(publishService, logger)
	shareHandler := handler.NewShareHandler(publishService, logger)
	navHandler := handler.NewNavigationHandler(navService, logger)
	policyHandler := handler.NewMediaPolicyHandler(policyRegistry, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Event routes
	mux.HandleFunc("POST /api/events", eventHandler.CreateEvent)
	mux.HandleFunc("GET /api/events", eventHandler.ListEvents)
	mux.HandleFunc("GET /api/events/{id}", eventHandler.GetEvent)
	mux.HandleFunc("PATCH /api/events/{id}", eventHandler.UpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", eventHandler.DeleteEvent)

	// Event-scoped folder listing, search and stats
	mux.HandleFunc("GET /api/events/{id}/folders", folderHandler.ListFolders)
	mux.HandleFunc("GET /api/events/{id}/folders/search", folderHandler.SearchFolders)
	mux.HandleFunc("GET /api/events/{id}/folders/stats", folderHandler.GetFolderStats)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumb", navHandler.GetBreadcrumb)
	mux.HandleFunc("GET /api/folders/{id}/view", navHandler.GetHierarchyView)
	mux.HandleFunc("GET /api/folders/{id}/assets", assetHandler.ListAssets)

	// Publish lifecycle
	mux.HandleFunc("POST /api/folders/{id}/publish", publishHandler.Publish)
	mux.HandleFunc("DELETE /api/folders/{id}/publish", publishHandler.Unpublish)
	mux.HandleFunc("POST /api/folders/{id}/publish/rotate", publishHandler.RotateToken)

	// Asset routes
	mux.HandleFunc("POST /api/assets", assetHandler.RegisterAsset)
	mux.HandleFunc("GET /api/assets/duplicates", assetHandler.FindDuplicate) // literal segment wins over {id}
	mux.HandleFunc("POST /api/assets/duplicates", assetHandler.BatchFindDuplicates)
	mux.HandleFunc("GET /api/assets/{id}", assetHandler.GetAsset)
	mux.HandleFunc("PATCH /api/assets/{id}/status", assetHandler.UpdateAssetStatus)
	mux.HandleFunc("DELETE /api/assets/{id}", assetHandler.DeleteAsset)
	mux.HandleFunc("POST /api/assets/{id}/verify", assetHandler.VerifyAsset)
	mux.HandleFunc("GET /api/assets/{id}/download", assetHandler.DownloadOriginal)

	// Media policy (what uploaders may send)
	mux.HandleFunc("GET /api/media/policy", policyHandler.GetPolicy)

	// Public share route (no auth; invalid tokens read as not found)
	mux.HandleFunc("GET /api/share/{token}", shareHandler.GetGallery)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.Metrics()(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
