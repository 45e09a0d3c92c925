package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"catalog/internal/config"
	"catalog/internal/dto"
	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/logger"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Errorw("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	// --- Storage ---
	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.close()
	log.Infow("storage ready", "driver", cfg.DB.Driver)

	if cfg.SeedDemoData {
		if err := seedProducts(ctx, store.repo, log); err != nil {
			return err
		}
	}

	// --- Change events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		events = services.NewQueueEventPublisher(mqClient)
		log.Infow("publishing product events", "queue", rabbitmq.DefaultQueue)
	}

	// --- HTTP ---
	productService := services.NewProductService(store.repo, events, log.WithComponent("products"))
	app := handlers.NewApp(handlers.AppConfig{
		Service:         productService,
		Validate:        dto.NewValidator(),
		Ping:            store.ping,
		Logger:          log,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Infow("starting server", "addr", cfg.AppPort)
		listenErr <- app.Listen(cfg.AppPort)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	}

	if err := app.Shutdown(); err != nil {
		log.Warnw("error during fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

// storage bundles the repository chosen by DB_DRIVER with its health probe and
// release function.
type storage struct {
	repo  repositories.ProductRepository
	ping  handlers.PingFunc
	close func()
}

func openStore(ctx context.Context, cfg repositories.DBConfig) (*storage, error) {
	switch cfg.Driver {
	case repositories.DriverMemory:
		return &storage{repo: repositories.NewMemoryProductRepository(), close: func() {}}, nil

	case repositories.DriverPgx:
		pool, err := repositories.OpenPgxPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo := repositories.NewPgxProductRepository(pool)
		if cfg.AutoMigrate {
			if err := repo.EnsureTable(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &storage{repo: repo, ping: pool.Ping, close: pool.Close}, nil

	default:
		db, err := repositories.OpenGORM(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		return &storage{
			repo:  repositories.NewGORMProductRepository(db),
			ping:  sqlDB.PingContext,
			close: func() { _ = sqlDB.Close() },
		}, nil
	}
}

// seedProducts inserts a few demo products when the catalog is empty.
func seedProducts(ctx context.Context, repo repositories.ProductRepository, log *logger.Logger) error {
	existing, err := repo.FindPage(ctx, models.ProductFilter{}, models.PageRequest{Size: 1})
	if err != nil {
		return fmt.Errorf("failed to check catalog before seeding: %w", err)
	}
	if existing.TotalElements > 0 {
		log.Infow("catalog not empty, skipping demo data", "products", existing.TotalElements)
		return nil
	}

	str := func(s string) *string { return &s }
	price := func(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

	products := []models.Product{
		{Title: "Vortex 2 Leggings", Handle: str("vortex-2-leggings"), Vendor: str("FAMME"), Price: price("249.00")},
		{Title: "Seamless Legging", Handle: str("seamless-legging"), Vendor: str("FAMME"), Price: price("199.00")},
		{Title: "Running Shorts", Handle: str("running-shorts"), Vendor: str("Nike"), Price: price("35.00")},
		{Title: "Sports Bra", Handle: str("sports-bra"), Vendor: str("Adidas"), Price: price("45.50")},
		{Title: "Gift Card", Handle: str("gift-card")},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", products[i].Title, err)
		}
		log.Debugw("seeded product", "id", products[i].ID, "title", products[i].Title)
	}
	log.Infow("seeded demo data", "products", len(products))
	return nil
}
