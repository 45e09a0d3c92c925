package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingFunc checks that the backing store is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	ping    PingFunc
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler. A nil ping reports the store as
// always up (in-memory backend).
func NewHealthHandler(ping PingFunc) *HealthHandler {
	return &HealthHandler{ping: ping, timeout: 2 * time.Second}
}

// RegisterRoutes registers GET /health on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, database, code := "healthy", "up", fiber.StatusOK
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			status, database, code = "unhealthy", "down", fiber.StatusServiceUnavailable
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
