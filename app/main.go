package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmaslov/media-scrape/app/airtable"
	"github.com/dmaslov/media-scrape/app/api"
	"github.com/dmaslov/media-scrape/app/cfg"
	"github.com/dmaslov/media-scrape/app/jobs"
	"github.com/dmaslov/media-scrape/app/provider"
	"github.com/dmaslov/media-scrape/app/scrape"
	"github.com/dmaslov/media-scrape/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting Media Scrape server", "version", appCfg.Version)

	// One shared transport for all outbound calls; per-call deadlines are
	// applied by the components themselves
	httpClient := &http.Client{}

	searchTimeout := time.Duration(appCfg.SearchTimeout) * time.Second

	registry := provider.NewRegistry()
	registry.Register(provider.NewOpenverse(httpClient, appCfg.OpenverseAPIKey, appCfg.UserAgent, searchTimeout))
	registry.Register(provider.NewArchive(httpClient, appCfg.UserAgent, searchTimeout))
	registry.Register(provider.NewFlickr(httpClient, appCfg.UserAgent, searchTimeout))
	if appCfg.YouTubeAPIKey != "" {
		registry.Register(provider.NewYouTube(httpClient, appCfg.YouTubeAPIKey, appCfg.UserAgent, searchTimeout))
	} else {
		slog.Warn("YouTube provider disabled", "reason", "YOUTUBE_API_KEY not set")
	}
	slog.Info("Providers registered", "providers", registry.Names())

	store, err := airtable.NewClient(
		appCfg.AirtableEndpoint, appCfg.AirtableBaseID, appCfg.AirtableTableName,
		appCfg.AirtableAPIKey, appCfg.UserAgent, httpClient,
		time.Duration(appCfg.StoreReadTimeout)*time.Second,
		time.Duration(appCfg.StoreWriteTimeout)*time.Second)
	if err != nil {
		slog.Error("Failed to initialize record store client", "error", err)
		os.Exit(1)
	}

	enricher := scrape.NewNotesEnricher(httpClient, appCfg.UserAgent, searchTimeout)
	orchestrator := scrape.NewOrchestrator(registry, store, enricher)

	configCache := jobs.NewConfigCache(appCfg.JobsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load job configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Job configurations loaded", "count", configCache.GetConfigCount())

	scheduler := tasks.NewScheduler(configCache, orchestrator)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	apiHandler := api.NewHandler(orchestrator, registry, configCache)
	server := api.NewServer(apiHandler, appCfg.ShortcutsKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
