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

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"lorehold/internal/clock"
	"lorehold/internal/config"
	"lorehold/internal/domain/repositories"
	"lorehold/internal/handler"
	"lorehold/internal/httputil"
	"lorehold/internal/lock"
	"lorehold/internal/middleware"
	"lorehold/internal/repository/memory"
	"lorehold/internal/repository/postgres"
	"lorehold/internal/repository/records"
	"lorehold/internal/schema"
	"lorehold/internal/service"
	miniostore "lorehold/internal/storage/minio"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.Debug {
		logFile, err := config.SetupLogFile("logs", 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
		"blob_backend", cfg.BlobBackend,
	)

	ctx := context.Background()

	// Persistent store
	var store repositories.Store
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		pgStore := postgres.NewStore(pool, cfg.TablePrefix, logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		store = pgStore
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
	default:
		store = memory.NewStore()
		logger.Warn("using in-memory store; state is lost on restart")
	}

	// Blob store
	var blobs repositories.BlobStore
	switch cfg.BlobBackend {
	case "minio":
		minioBlobs, err := miniostore.NewBlobStore(ctx, miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to connect object store: %v", err)
		}
		blobs = minioBlobs
		logger.Info("object store connected", "bucket", cfg.MinioBucket)
	default:
		blobs = memory.NewBlobStore()
		logger.Warn("using in-memory blob store; content is lost on restart")
	}

	// Repositories over the generic store
	systemRepo := records.NewGameSystemRepository(store)
	docRepo := records.NewDocumentRepository(store)
	worldRepo := records.NewWorldRepository(store)

	// Lock coordination core
	lockManager := lock.NewManager(clock.System{}, config.DefaultLockTTL, logger)
	guard := lock.NewGuard(lockManager)
	sweeper := lock.NewSweeper(lockManager, config.LockSweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// Schema validator
	validator := schema.NewValidator()

	// Services
	systemService := service.NewGameSystemService(systemRepo, worldRepo, guard, lockManager, logger)
	docService := service.NewDocumentService(docRepo, systemRepo, blobs, guard, validator, logger)
	worldService := service.NewWorldService(worldRepo, systemRepo, logger)

	// Handlers
	systemHandler := handler.NewGameSystemHandler(systemService, logger)
	docHandler := handler.NewDocumentHandler(docService, logger)
	worldHandler := handler.NewWorldHandler(worldService, logger)
	lockHandler := handler.NewLockHandler(lockManager, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now(),
		})
	})

	// Game system routes
	mux.HandleFunc("POST /api/systems", systemHandler.CreateGameSystem)
	mux.HandleFunc("GET /api/systems", systemHandler.ListGameSystems)
	mux.HandleFunc("GET /api/systems/public", systemHandler.ListPublicGameSystems)
	mux.HandleFunc("GET /api/systems/{id}", systemHandler.GetGameSystem)
	mux.HandleFunc("PATCH /api/systems/{id}", systemHandler.UpdateGameSystem)
	mux.HandleFunc("DELETE /api/systems/{id}", systemHandler.DeleteGameSystem)

	// Lock routes
	mux.HandleFunc("POST /api/systems/{id}/lock", lockHandler.AcquireLock)
	mux.HandleFunc("PUT /api/systems/{id}/lock", lockHandler.RenewLock)
	mux.HandleFunc("DELETE /api/systems/{id}/lock", lockHandler.ReleaseLock)
	mux.HandleFunc("GET /api/systems/{id}/lock", lockHandler.GetLock)
	mux.HandleFunc("GET /api/locks", lockHandler.ListLocks)
	mux.HandleFunc("GET /api/locks/stats", lockHandler.LockStats)
	mux.HandleFunc("DELETE /api/locks", lockHandler.ReleaseMyLocks)
	mux.HandleFunc("DELETE /api/locks/{resource}", lockHandler.ForceReleaseLock)

	// Document routes
	mux.HandleFunc("POST /api/systems/{id}/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/systems/{id}/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("GET /api/documents/{id}/download", docHandler.DownloadDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)

	// World routes
	mux.HandleFunc("POST /api/worlds", worldHandler.CreateWorld)
	mux.HandleFunc("GET /api/worlds", worldHandler.ListWorlds)
	mux.HandleFunc("GET /api/worlds/{id}", worldHandler.GetWorld)
	mux.HandleFunc("PATCH /api/worlds/{id}", worldHandler.UpdateWorld)
	mux.HandleFunc("DELETE /api/worlds/{id}", worldHandler.DeleteWorld)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Identity → Routes
	root = middleware.Identity("X-User-ID")(root)
	root = middleware.Recovery(logger)(root)

	// CORS - must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-User-ID", "If-None-Match"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
