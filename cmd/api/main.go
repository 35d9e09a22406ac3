package main

import (
	"log"

	"shopcrawl/internal/api"
	"shopcrawl/internal/config"
	"shopcrawl/internal/logger"
	"shopcrawl/internal/observability"
	"shopcrawl/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Expose the scraper counter families on this binary's /metrics too
	observability.Register()

	// Document store (lazy, dials on first request)
	store := storage.NewStore(cfg.MongoURI, logger)

	// Run ledger
	ledger, err := storage.NewLedger(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open run ledger: %v", err)
	}
	defer ledger.Close()

	// Initialize API server
	server := api.New(cfg, logger, store, ledger)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
