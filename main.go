package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/consultorio-web/consultorio-backend/config"
	"github.com/consultorio-web/consultorio-backend/db"
	"github.com/consultorio-web/consultorio-backend/handlers"
	"github.com/consultorio-web/consultorio-backend/internal/auth"
	"github.com/consultorio-web/consultorio-backend/internal/cache"
	"github.com/consultorio-web/consultorio-backend/internal/events"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/internal/store/postgres"
	"github.com/consultorio-web/consultorio-backend/internal/websocket"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/router"
	"github.com/consultorio-web/consultorio-backend/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheSweepInterval = time.Minute
	serverShutdownWait = 10 * time.Second
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(cfg.Database.URL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	pool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	contentStore := postgres.NewContentStore(pool)
	serviceStore := postgres.NewServiceStore(pool)
	formStore := postgres.NewFormStore(pool)
	resourceStore := postgres.NewResourceStore(pool)
	submissionStore := postgres.NewSubmissionStore(pool)
	operatorStore := postgres.NewOperatorStore(pool)
	cleanupStore := postgres.NewCleanupStore(pool)

	// Redis backs the shared cache and relays change events between instances.
	var redisClient redis.UniversalClient
	var readCache cache.Cache
	if cfg.Cache.Backend == config.CacheBackendRedis {
		client := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		if err := config.PingRedis(ctx, client); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		redisClient = client
		readCache = cache.NewRedisCache(client, "consultorio")
	} else {
		readCache = cache.NewMemoryCache(ctx, cacheSweepInterval)
	}

	hub := websocket.NewHub()
	var broadcaster cache.Broadcaster = hub
	if redisClient != nil {
		relay := events.NewRedisRelay(redisClient, hub)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Errorw("Change event relay stopped", "error", err)
			}
		}()
		broadcaster = relay
	}
	invalidator := cache.NewInvalidator(readCache, broadcaster)
	ttl := cfg.Cache.RefreshInterval

	gateway := buildStorageGateway(cfg, log)
	var (
		files       handlers.FileGateway
		fileRemover services.FileRemover
	)
	if gateway != nil {
		files, fileRemover = gateway, gateway
	}
	cleanupService := services.NewCleanupService(cleanupStore, fileRemover, cfg.Storage.CleanupMaxAttempts)
	if fileRemover != nil {
		go cleanupService.Run(ctx, cfg.Storage.CleanupInterval)
	}

	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	var notifier services.Notifier
	if cfg.Email.Enabled {
		notifier = services.NewSubmissionNotifier(&cfg.Email, workerPool)
	}

	contentService := services.NewContentService(contentStore, readCache, ttl, invalidator)
	catalogService := services.NewCatalogService(serviceStore, readCache, ttl, invalidator)
	formService := services.NewFormService(formStore, readCache, ttl, invalidator)
	resourceService := services.NewResourceService(resourceStore, fileRemover, cleanupService, readCache, ttl, invalidator)
	submissionService := services.NewSubmissionService(submissionStore, serviceStore, formStore, notifier)
	dashboardService := services.NewDashboardService(contentStore, serviceStore, resourceStore, submissionStore)
	operatorService := services.NewOperatorService(operatorStore)

	if cfg.Seed.Content {
		if err := services.SeedContent(ctx, contentStore); err != nil {
			log.Errorw("Failed to seed initial content", "error", err)
		}
	}

	sessions := auth.NewSessionManager(cfg.Server.SessionSecret, cfg.Server.SessionTTL, auth.NewCacheRevoker(readCache))
	authenticator := auth.NewAuthenticator(cfg.Server.AdminPassword, operatorStore, sessions)

	healthService := services.NewHealthService(pool, redisClient, gateway != nil, cfg.Server.Version)
	healthService.SetActiveConnectionsGetter(hub.ConnectionCount)

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		Sessions:          sessions,
		HealthHandler:     handlers.NewHealthHandler(healthService),
		AuthHandler:       handlers.NewAuthHandler(authenticator, sessions),
		ContentHandler:    handlers.NewContentHandler(contentService),
		CatalogHandler:    handlers.NewCatalogHandler(catalogService, formService),
		ResourceHandler:   handlers.NewResourceHandler(resourceService),
		FileHandler:       handlers.NewFileHandler(files),
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService, dashboardService),
		AdminHandler:      handlers.NewAdminHandler(operatorService, cleanupService),
		ChangeFeed:        websocket.NewHandler(hub, cfg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error closing change feed", "error", err)
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer poolCancel()
	if err := workerPool.Shutdown(poolCtx); err != nil {
		log.Errorw("Error draining background jobs", "error", err)
	}

	log.Info("Server stopped gracefully")
}

// buildStorageGateway returns nil when object storage is disabled.
func buildStorageGateway(cfg *config.Config, log *zap.SugaredLogger) *storage.Gateway {
	if !cfg.Storage.Enabled {
		log.Warn("File storage disabled; uploads and file cleanup are unavailable")
		return nil
	}

	var backend storage.ObjectStore
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		backend = storage.NewS3Store(storage.S3Options{
			Endpoint:        cfg.Storage.S3Endpoint,
			Region:          cfg.Storage.S3Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
	default:
		supa, err := storage.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Storage.Bucket)
		if err != nil {
			log.Fatalf("Failed to create Supabase storage client: %v", err)
		}
		backend = supa
	}

	log.Infow("File storage enabled", "backend", cfg.Storage.Backend, "bucket", cfg.Storage.Bucket)
	return storage.NewGateway(backend, cfg.Storage.PublicBaseURL)
}
