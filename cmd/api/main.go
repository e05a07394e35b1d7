package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourbook/internal/cache"
	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/events"
	"tourbook/internal/handler"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"
	"tourbook/internal/router"
	"tourbook/internal/service"

	"github.com/rs/zerolog"
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
	logger.Info().Msg("starting tourbook API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	quotes := newQuoteCache(ctx, cfg.Redis, logger)
	defer quotes.Close()

	prices := newPricePublisher(cfg.Kafka, logger)
	defer prices.Close()

	bookings := newBookingPublisher(cfg.AMQP, logger)
	defer bookings.Close()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	dayRepo := repository.NewDayRepository(pool, logger)
	tourRepo := repository.NewTourRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	controller := propagation.NewController(dayRepo, tourRepo, logger)
	notifier := service.NewNotifier(quotes, prices, logger)

	// Initialize services
	currency := cfg.Pricing.DefaultCurrency
	catalogService := service.NewCatalogService(catalogRepo, controller, notifier, currency, logger)
	itineraryService := service.NewItineraryService(dayRepo, catalogRepo, controller, notifier, currency, logger)
	tourService := service.NewTourService(tourRepo, dayRepo, controller, notifier, quotes, service.TourDefaults{
		Commission: cfg.Pricing.DefaultCommission,
		Currency:   currency,
	}, logger)
	orderService := service.NewOrderService(orderRepo, tourRepo, controller, bookings, logger)

	mux := router.New(router.Handlers{
		Tours:  handler.NewTourHandler(tourService, logger),
		Orders: handler.NewOrderHandler(orderService, logger),
		Admin:  handler.NewAdminHandler(catalogService, itineraryService, tourService, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newQuoteCache connects to Redis when enabled. An unreachable Redis disables
// quote caching rather than failing startup.
func newQuoteCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) cache.QuoteCache {
	if !cfg.Enabled {
		logger.Info().Msg("quote cache disabled")
		return cache.NewNopQuoteCache()
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("failed to connect to redis, quote cache disabled")
		return cache.NewNopQuoteCache()
	}
	return cache.NewQuoteCache(client, cfg.QuoteTTL, logger)
}

func newPricePublisher(cfg config.KafkaConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("price events disabled")
		return events.NopPublisher{}
	}

	p := events.NewKafkaPublisher(cfg, 0, logger)
	p.Start()
	return p
}

func newBookingPublisher(cfg config.AMQPConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("booking events disabled")
		return events.NopPublisher{}
	}

	p, err := events.NewAMQPPublisher(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to amqp broker, booking events disabled")
		return events.NopPublisher{}
	}
	return p
}
