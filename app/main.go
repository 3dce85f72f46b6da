package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savemoney/brochures/app/api"
	"github.com/savemoney/brochures/app/browser"
	"github.com/savemoney/brochures/app/cfg"
	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/database"
	"github.com/savemoney/brochures/app/ingest"
	"github.com/savemoney/brochures/app/scrape"
	"github.com/savemoney/brochures/app/storage"
	"github.com/savemoney/brochures/app/tasks"
)

// browserFactory acquires one headless-browser session per retailer run.
type browserFactory struct {
	userAgent string
}

func (f browserFactory) NewSession(ctx context.Context, navTimeout, selectorTimeout time.Duration) (ingest.Session, error) {
	session, err := browser.NewSession(ctx, browser.Options{
		UserAgent:         f.userAgent,
		NavigationTimeout: navTimeout,
		SelectorTimeout:   selectorTimeout,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func main() {
	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Brochures server", "version", appCfg.Version)

	// Database connection and schema
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	// Load retailer configurations
	storeCache := config.NewCache(appCfg.StoresDir)
	if err := storeCache.Run(); err != nil {
		slog.Error("Failed to load store configurations", "dir", appCfg.StoresDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Store configurations loaded", "dir", appCfg.StoresDir, "count", storeCache.GetStoreCount())

	for _, store := range storeCache.GetStores() {
		if !scrape.Registered(store.Adapter) {
			slog.Error("Store references an unknown adapter kind", "store", store.Name, "adapter", store.Adapter)
			os.Exit(1)
		}
	}

	// Document store backend
	docs, err := newDocumentStore(appCfg)
	if err != nil {
		slog.Error("Failed to initialize document store", "backend", appCfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	slog.Info("Document store ready", "backend", appCfg.StorageBackend)

	// Core pipeline components
	repo := database.NewBrochureRepository(db)
	ingester := ingest.NewIngester(repo, docs,
		browserFactory{userAgent: appCfg.UserAgent},
		&http.Client{Timeout: 90 * time.Second},
		appCfg.UserAgent)
	sweeper := ingest.NewSweeper(repo)

	// Background scheduler for the daily scrape cycle
	scheduler := tasks.NewScheduler(storeCache, ingester, sweeper)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval_seconds", appCfg.SchedulerInterval, "scrape_hour", appCfg.ScrapeHour)

	// HTTP server
	var verifier api.SessionVerifier
	if appCfg.AuthVerifyURL != "" {
		verifier = api.NewHTTPSessionVerifier(appCfg.AuthVerifyURL)
		slog.Info("Session verification enabled", "url", appCfg.AuthVerifyURL)
	}

	handler := api.NewHandler(repo, storeCache, ingester, sweeper, verifier, appCfg.ScrapeHour, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	// The local backend serves its documents directly
	if appCfg.StorageBackend == "local" {
		server.Static("/documents", appCfg.StorageDir)
	}

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func newDocumentStore(appCfg *cfg.Cfg) (storage.DocumentStore, error) {
	switch appCfg.StorageBackend {
	case "bucket":
		if appCfg.BucketURL == "" || appCfg.BucketKey == "" {
			return nil, fmt.Errorf("bucket backend requires BUCKET_URL and BUCKET_KEY")
		}
		return storage.NewBucketStore(appCfg.BucketURL, appCfg.BucketName, appCfg.BucketKey), nil
	case "local":
		return storage.NewLocalStore(appCfg.StorageDir, appCfg.BaseUrl)
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", appCfg.StorageBackend)
	}
}
