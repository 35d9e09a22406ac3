package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shopcrawl/internal/browser"
	"shopcrawl/internal/config"
	"shopcrawl/internal/events"
	"shopcrawl/internal/logger"
	"shopcrawl/internal/observability"
	"shopcrawl/internal/scrape"
	"shopcrawl/internal/shopify"
	"shopcrawl/internal/storage"
)

// go run cmd/scraper/main.go -store=examplestore.myshopify.com
// go run cmd/scraper/main.go -store=https://examplestore.com -limit=500 -config=scraper.yaml
func main() {
	if err := run(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}

// run owns every resource of a scrape so deferred cleanup (browser context,
// store connection, kafka writer) executes on failed runs too.
func run() error {
	storeURL := flag.String("store", "", "URL of the Shopify store to scrape (required)")
	limit := flag.Int("limit", 0, "Maximum number of records to persist (0 = no limit)")
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	outDir := flag.String("out", "", "Directory for JSON/CSV exports (defaults to OUTPUT_DIR)")
	flag.Parse()

	if *storeURL == "" {
		flag.Usage()
		return errors.New("-store is required")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			return err
		}
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	domain, err := shopify.CleanDomain(*storeURL)
	if err != nil {
		return fmt.Errorf("invalid store URL: %w", err)
	}

	if cfg.MetricsPort != "" {
		observability.Start(cfg.MetricsPort, logger)
	}

	// Cancel the run on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence
	store := storage.NewStore(cfg.MongoURI, logger)
	defer store.Close(context.Background())

	ledger, err := storage.NewLedger(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open run ledger: %w", err)
	}
	defer ledger.Close()

	exporter := storage.NewExporter(cfg.OutputDir, logger)

	// Acquisition strategies, in preference order
	graphql := shopify.NewGraphQLClient(domain, cfg, logger)
	public := shopify.NewClient(domain, cfg, logger)
	renderer := browser.NewRenderer(domain, cfg, logger)
	defer renderer.Close()

	selector := scrape.NewSelector(logger,
		scrape.RetryPolicy{MaxRetries: cfg.MaxRetries, Base: cfg.BackoffBase},
		graphql, public, renderer,
	)

	pipeline := &scrape.Pipeline{
		Selector: selector,
		Sink:     store,
		Exporter: exporter,
		Log:      logger,
		Limit:    *limit,
	}
	if cfg.KafkaBrokers != "" {
		publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
		defer publisher.Close()
		pipeline.Events = publisher
	}

	record, err := ledger.Start(domain)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	logger.Info("Starting scrape of %s", domain)
	count, runErr := pipeline.Run(ctx)

	record.Strategy = selector.ActiveStrategy()
	if err := ledger.Finish(record, count, runErr); err != nil {
		logger.Error("Failed to record run outcome: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("scrape failed after %d products: %w", count, runErr)
	}
	logger.Info("Scrape finished, %d products persisted", count)
	return nil
}
