package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"catalog/pkg/logger"
)

// RequestID returns the id assigned by the requestid middleware, or "".
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}

// Logger middleware logs HTTP requests with timing and status. A logger
// tagged with the request id is stored in the request's user context.
//
// Errors from the chain are rendered here through the app's ErrorHandler so
// the logged status is the one the client receives.
func Logger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := log.With("request_id", RequestID(c))
		c.SetUserContext(logger.WithLogger(c.UserContext(), reqLog))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		reqLog.Infow("http request",
			"method", c.Method(),
			"path", c.Path(),
			"query", string(c.Request().URI().QueryString()),
			"status", c.Response().StatusCode(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		)
		return nil
	}
}
