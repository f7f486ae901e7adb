// Package main is the entry point for the DIANE finance assistant server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/ravilima/diane/internal/assistant"
	"gitlab.com/ravilima/diane/internal/config"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/gemini"
	"gitlab.com/ravilima/diane/internal/httpapi"
	"gitlab.com/ravilima/diane/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("diane %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if err := database.SeedCategories(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to seed categories")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	var client *gemini.Client
	if cfg.GeminiEnabled() {
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		logger.Log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client ready")
	} else {
		logger.Log.Warn().Msg("GEMINI_API_KEY not set; running with deterministic extraction only")
	}

	app := httpapi.New(pool, assistant.New(pool, client))

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		if err := app.Shutdown(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to shut down HTTP server")
		}
		cancel()
	}()

	logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logger.Log.Fatal().Err(err).Msg("HTTP server stopped")
	}
}
