package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"knowledgebase/internal/auth"
	"knowledgebase/internal/config"
	"knowledgebase/internal/handler"
	"knowledgebase/internal/middleware"
	"knowledgebase/internal/repository/postgres"
	postgresKB "knowledgebase/internal/repository/postgres/kb"
	serviceAuth "knowledgebase/internal/service/auth"
	serviceKB "knowledgebase/internal/service/kb"
	"knowledgebase/internal/storage/blob"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.OpenLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
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
		"table_prefix", cfg.TablePrefix,
		"blob_backend", cfg.BlobBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.RunSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	if err := postgres.EnsureRootIndex(ctx, pool, tables); err != nil {
		// Duplicate roots are still merged lazily per workspace.
		logger.Warn("root folder index missing, run kbctl migrate", "error", err)
	}
	logger.Info("database connected")

	blobStore, fsStore, err := blob.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repos := serviceKB.Repositories{
		Folders:   postgresKB.NewFolderRepository(repoConfig),
		Documents: postgresKB.NewDocumentRepository(repoConfig),
		Index:     postgresKB.NewIndexRepository(repoConfig),
		Assets:    postgresKB.NewAssetRepository(repoConfig),
	}
	memberRepo := postgresKB.NewMemberRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	authorizer := serviceAuth.NewRoleBasedAuthorizer(memberRepo, logger)
	kb := serviceKB.SetupServices(repos, blobStore, txManager, authorizer, serviceKB.OptionsFromConfig(cfg), logger)

	// Create handlers
	handlers := handler.Handlers{
		Folders:   handler.NewFolderHandler(kb.Folders, kb.Documents, logger),
		Documents: handler.NewDocumentHandler(kb.Documents, logger),
		Assets:    handler.NewAssetHandler(kb.Assets, logger),
		Tree:      handler.NewTreeHandler(kb.Tree, logger),
	}
	if fsStore != nil {
		handlers.Blobs = handler.NewBlobHandler(fsStore, logger)
	}

	logger.Info("services initialized")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handlers)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	defer limiter.Close()

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → RateLimit → Routes
	var h http.Handler = mux
	h = middleware.RateLimit(limiter, logger)(h)
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
