package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"catalog/internal/middleware"
	"catalog/internal/services"
	"catalog/pkg/logger"
)

// AppConfig carries everything NewApp needs to build the HTTP surface.
type AppConfig struct {
	Service         *services.ProductService
	Validate        *validator.Validate
	Ping            PingFunc
	Logger          *logger.Logger
	DefaultPageSize int
	MaxPageSize     int
}

// NewApp builds the fiber app: request id, request logging, panic recovery,
// /health, and the product API under /api with CORS.
func NewApp(cfg AppConfig) *fiber.App {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		ErrorHandler: middleware.ErrorHandler(log.WithComponent("http")),
	})

	app.Use(requestid.New())
	app.Use(middleware.Logger(log.WithComponent("http")))
	app.Use(recover.New())

	NewHealthHandler(cfg.Ping).RegisterRoutes(app)

	api := app.Group("/api", middleware.CORS())
	NewProductHandler(cfg.Service, cfg.Validate, cfg.DefaultPageSize, cfg.MaxPageSize).RegisterRoutes(api)

	return app
}
