package integration

import (
	"context"
	"testing"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/model"
	"tourbook/internal/propagation"
	"tourbook/internal/repository"
	"tourbook/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCatalog inserts two cities and one component per category. Every id is 1
// after CleanupDB except Izmir, which is city 2.
//
//	flight 1    100.00
//	hotel 1     200.00
//	transfer 1   50.00
//	activity 1   30.00
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	statements := []string{
		"INSERT INTO cities (name, country) VALUES ('Istanbul', 'Turkey'), ('Izmir', 'Turkey')",
		"INSERT INTO flights (name, price) VALUES ('IST-ADB', 100.00)",
		"INSERT INTO hotels (name, price_per_night) VALUES ('Sultanahmet Inn', 200.00)",
		"INSERT INTO airport_transfers (name, price) VALUES ('Airport shuttle', 50.00)",
		"INSERT INTO activities (name, price) VALUES ('Bosphorus cruise', 30.00)",
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to seed catalogue: %v", err)
		}
	}
}

// CleanupDB removes all rows and resets identity sequences.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE travelers, orders, tour_places_covered, tour_days, tours,
			day_flights, day_hotels, day_transfers, day_activities, days,
			flights, hotels, airport_transfers, activities, cities
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}

// Services is the service layer wired against a test database, with caching and
// events disabled.
type Services struct {
	Catalog   service.CatalogService
	Itinerary service.ItineraryService
	Tours     service.TourService
	Orders    service.OrderService
}

// NewServices wires repositories, the propagation controller and services.
func NewServices(pool *pgxpool.Pool) *Services {
	logger := zerolog.Nop()

	catalogRepo := repository.NewCatalogRepository(pool, logger)
	dayRepo := repository.NewDayRepository(pool, logger)
	tourRepo := repository.NewTourRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	controller := propagation.NewController(dayRepo, tourRepo, logger)
	notifier := service.NewNotifier(nil, nil, logger)

	return &Services{
		Catalog:   service.NewCatalogService(catalogRepo, controller, notifier, model.CurrencyUSD, logger),
		Itinerary: service.NewItineraryService(dayRepo, catalogRepo, controller, notifier, model.CurrencyUSD, logger),
		Tours: service.NewTourService(tourRepo, dayRepo, controller, notifier, nil, service.TourDefaults{
			Commission: decimal.RequireFromString("1.10"),
			Currency:   model.CurrencyUSD,
		}, logger),
		Orders: service.NewOrderService(orderRepo, tourRepo, controller, nil, logger),
	}
}

// SeedTour builds the "aegean" tour on top of SeedCatalog: one Istanbul day with
// every seeded component attached, on a tour with commission 1.10. It returns
// the tour and day ids.
func SeedTour(t *testing.T, svc *Services) (tourID, dayID int64) {
	t.Helper()

	ctx := context.Background()

	day, err := svc.Itinerary.CreateDay(ctx, &model.CreateDayRequest{CityID: 1, DayNumber: 1, Title: "Old City"})
	if err != nil {
		t.Fatalf("failed to create day: %v", err)
	}

	for _, category := range model.Categories {
		if _, err := svc.Itinerary.AttachComponent(ctx, day.ID, category, 1, 0); err != nil {
			t.Fatalf("failed to attach %s: %v", category, err)
		}
	}

	tour, err := svc.Tours.CreateTour(ctx, &model.CreateTourRequest{
		Title:         "Aegean",
		PlacesCovered: []int64{1},
	})
	if err != nil {
		t.Fatalf("failed to create tour: %v", err)
	}

	if _, err := svc.Tours.AttachDay(ctx, tour.ID, &model.AttachDayRequest{DayID: day.ID}); err != nil {
		t.Fatalf("failed to attach day: %v", err)
	}

	return tour.ID, day.ID
}
