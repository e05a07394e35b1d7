// Command pricefeed imports catalogue prices from gzipped JSON-lines feed files
// and recomputes every affected day and tour.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tourbook/internal/cache"
	"tourbook/internal/catalog"
	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/events"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"
	"tourbook/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Strs("files", cfg.Catalog.Files).Msg("starting price feed import")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Cached quotes must be dropped for recomputed tours, so the importer shares
	// the API's cache and price stream when they are enabled.
	var quotes cache.QuoteCache = cache.NewNopQuoteCache()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		quotes = cache.NewQuoteCache(client, cfg.Redis.QuoteTTL, logger)
	}
	defer quotes.Close()

	var prices events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka, 0, logger)
		kp.Start()
		prices = kp
	}
	defer prices.Close()

	catalogRepo := repository.NewCatalogRepository(pool, logger)
	controller := propagation.NewController(
		repository.NewDayRepository(pool, logger),
		repository.NewTourRepository(pool, logger),
		logger,
	)
	notifier := service.NewNotifier(quotes, prices, logger)
	catalogService := service.NewCatalogService(catalogRepo, controller, notifier, cfg.Pricing.DefaultCurrency, logger)

	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	}
	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.Catalog.LocalDir, cfg.S3.Enabled, logger)

	importer := catalog.NewImporter(catalog.ImporterConfig{
		Files:           cfg.Catalog.Files,
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
	}, loader, catalogService, logger)

	report, err := importer.Run(ctx)
	if report != nil {
		logger.Info().
			Int("files", report.Files).
			Int("entries", report.Entries).
			Int("rejected", report.Rejected).
			Int("changed", report.Changed).
			Int("unchanged", report.Unchanged).
			Int("missing", report.Missing).
			Int("failed", report.Failed).
			Int("tours_recomputed", report.ToursRecomputed).
			Msg("price feed import finished")
	}
	if err != nil {
		return fmt.Errorf("price feed import failed: %w", err)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d prices failed to apply", report.Failed)
	}
	return nil
}
