package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize Repository ---
	// The store connection is opened lazily by the first request.
	productRepo, closeStore, err := newProductRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize product repository: %v", err)
	}
	defer closeStore()

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeProductEvents(logProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL is not set. Product events will not be published.")
	}

	// --- Initialize Services and Fiber App ---
	productService := services.NewProductService(productRepo, publisher)
	app := newApp(productService)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s (store: %s)", cfg.AppPort, cfg.StoreDriver)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp builds the Fiber app with middleware and all routes.
func newApp(productService *services.ProductService) *fiber.App {
	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handlers.NewProductHandler(productService).RegisterRoutes(app)
	return app
}

// newProductRepository selects the repository for the configured store.
// The returned func releases the store connection.
func newProductRepository(cfg *config.Config) (repositories.ProductRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return repositories.NewMockProductRepository(), func() {}, nil
	case config.DriverPostgres, config.DriverSQLite:
		conn, err := database.NewGORMManager(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewGORMProductRepository(conn), closer(conn.Close), nil
	default:
		conn := database.NewMongoManager(cfg.MongoURI)
		repo := repositories.NewMongoProductRepository(conn, cfg.MongoDatabase, cfg.MongoCollection)
		return repo, closer(conn.Close), nil
	}
}

func closer(closeFn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeFn(ctx); err != nil {
			log.Printf("Error closing store connection: %v", err)
		}
	}
}

func logProductEvent(evt rabbitmq.ProductEvent) error {
	log.Printf("Received %s event for product %s (creator: %s)", evt.Event, evt.Product.ID, evt.Product.Creator)
	return nil
}
