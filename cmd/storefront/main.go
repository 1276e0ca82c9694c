package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/catalog"
	"flyer-kart/internal/config"
	"flyer-kart/internal/handler"
	"flyer-kart/internal/middleware"
	"flyer-kart/internal/router"
	"flyer-kart/internal/session"
	"flyer-kart/internal/storefront"
)

const (
	catalogRefreshInterval = 5 * time.Minute
	tokenCheckInterval     = time.Minute
	tokenRefreshLead       = 5 * time.Minute
	reapInterval           = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting flyer-kart storefront")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := backend.New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout()}, logger)

	// Sample catalog with S3 and local fallback
	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	} else {
		logger.Info().Msg("using local file system for sample flyers (S3 disabled)")
	}
	samples := catalog.NewSamples(
		catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled && s3Loader != nil, logger),
		cfg.Samples.Path,
	)

	catalogStore := catalog.NewStore(client, logger)
	if err := catalogStore.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("catalog unavailable at startup, serving empty catalog until next refresh")
	}

	provider, err := session.NewCognitoProvider(ctx, cfg.Auth.CognitoRegion, cfg.Auth.CognitoClientID, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	persister, err := session.NewPersister(ctx, cfg.Session, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer persister.Close()

	registry := storefront.NewRegistry(storefront.Deps{
		Catalog:         catalogStore,
		CatalogAPI:      client,
		Cart:            client,
		Favorites:       client,
		Checkout:        client,
		Users:           client,
		Samples:         samples,
		Provider:        provider,
		Persister:       persister,
		RefreshInterval: tokenCheckInterval,
		RefreshLead:     tokenRefreshLead,
	}, logger)
	defer registry.CloseAll()

	go registry.RunReaper(ctx, reapInterval, cfg.Session.TTL())
	go refreshCatalog(ctx, catalogStore, registry, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Catalog:   handler.NewCatalogHandler(catalogStore, logger),
		Auth:      handler.NewAuthHandler(logger),
		Cart:      handler.NewCartHandler(logger),
		Favorites: handler.NewFavoritesHandler(logger),
		Form:      handler.NewFormHandler(logger),
	}, registry, router.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Cookie: middleware.CookieOptions{
			Secure: cfg.Server.CookieSecure,
			MaxAge: cfg.Session.TTL(),
		},
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("backend", cfg.Backend.BaseURL).
			Str("session_store", cfg.Session.Store).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// refreshCatalog reloads the shared catalog periodically and re-filters every
// live session's view.
func refreshCatalog(ctx context.Context, store *catalog.Store, registry *storefront.Registry, logger zerolog.Logger) {
	ticker := time.NewTicker(catalogRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Load(ctx); err != nil {
				logger.Warn().Err(err).Msg("catalog refresh failed, keeping previous data")
				continue
			}
			registry.Refresh()
		}
	}
}
