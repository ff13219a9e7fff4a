package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tcg-collection-api/internal/config"
	"tcg-collection-api/internal/handler"
	"tcg-collection-api/internal/logging"
	"tcg-collection-api/internal/provider"
	"tcg-collection-api/internal/repository"
	"tcg-collection-api/internal/router"
	"tcg-collection-api/internal/service"
	"tcg-collection-api/internal/syncstate"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	log.Printf("Starting %s v%s...", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the catalog store and bring its schema up to date
	repo, err := repository.Open(cfg.Store.NormalizedType(), cfg.Store.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.NormalizedType(), err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := repo.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to migrate %s store: %v", cfg.Store.NormalizedType(), err)
	}
	cancel()
	log.Printf("%s catalog store initialized", cfg.Store.NormalizedType())

	// Sync reports go to Redis when configured and reachable, memory otherwise
	state := openSyncState(cfg.SyncState)
	defer state.Close()

	client := provider.NewClient(provider.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		PageSize:          cfg.Provider.PageSize,
		Timeout:           cfg.Provider.Timeout,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
	})

	// Initialize services
	catalogService := service.NewCatalogService(repo)
	collectionService := service.NewCollectionService(repo)
	syncService := service.NewSyncService(repo, client, state)

	// Create router
	r := router.New(router.Config{
		APIPrefix:         cfg.App.APIPrefix,
		AllowedOrigins:    cfg.App.AllowedOrigins,
		Handler:           handler.New(repo, cfg.App.Version),
		CatalogHandler:    handler.NewCatalogHandler(catalogService),
		CollectionHandler: handler.NewCollectionHandler(collectionService),
		SyncHandler:       handler.NewSyncHandler(syncService),
		AdminHandler:      handler.NewAdminHandler(repo, state),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s (prefix %q)", cfg.Server.Address(), cfg.App.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

func openSyncState(cfg config.SyncStateConfig) syncstate.Store {
	if strings.EqualFold(cfg.Type, "redis") {
		store, err := syncstate.NewRedisStore(syncstate.RedisConfig{
			Addr:      cfg.RedisAddress(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		})
		if err == nil {
			log.Println("Redis sync state store initialized")
			return store
		}
		log.Printf("Warning: Redis connection failed, keeping sync reports in memory: %v", err)
	}
	return syncstate.NewMemoryStore()
}
