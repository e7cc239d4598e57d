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

	"github.com/joho/godotenv"

	"essaim/app/api"
	"essaim/app/cfg"
	"essaim/app/database"
	"essaim/app/generate"
	"essaim/app/scan"
	"essaim/app/scheduler"
	"essaim/app/seed"
	"essaim/app/source"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Essaim server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DataDir)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", migrationVersion, "dirty", dirty)

	campaignRepo := database.NewCampaignRepository(db)
	oppRepo := database.NewOpportunityRepository(db)
	responseRepo := database.NewResponseRepository(db)
	seenRepo := database.NewSeenPostRepository(db)

	if appCfg.SeedFile != "" {
		seeded, err := seed.NewLoader(appCfg.SeedFile, campaignRepo).Run()
		if err != nil {
			slog.Error("Failed to load campaign seed file", "path", appCfg.SeedFile, "error", err)
			os.Exit(1)
		}
		if seeded > 0 {
			slog.Info("Campaigns seeded", "count", seeded)
		}
	}

	httpClient := &http.Client{Timeout: 12 * time.Second}

	fetcher := source.New(httpClient)
	scanner := scan.NewScanner(fetcher, oppRepo, seenRepo,
		time.Duration(appCfg.FetchDelayMs)*time.Millisecond)

	var generator api.GeneratorInterface
	if appCfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, response generation disabled")
	} else {
		gen, err := generate.NewGenerator(context.Background())
		if err != nil {
			slog.Warn("Failed to initialize Gemini client, response generation disabled", "error", err)
		} else {
			generator = gen
		}
	}

	scanScheduler := scheduler.NewScheduler(scanner, campaignRepo)
	scanScheduler.Start()
	defer scanScheduler.Stop()

	handler := api.NewHandler(campaignRepo, oppRepo, responseRepo, generator, scanScheduler)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
