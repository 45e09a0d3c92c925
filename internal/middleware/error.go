package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperror"
	"catalog/internal/models"
	"catalog/pkg/logger"
)

// ErrorHandler transforms errors returned by handlers into consistent JSON
// responses. Internal errors are hidden from clients and logged in full.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		reqLog := log.With("request_id", RequestID(c))

		if errors.Is(err, models.ErrProductNotFound) {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewNotFound("product", c.Params("id")).WithCause(err)
			}
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				reqLog.Debugw("request error", "code", appErr.Code, "cause", appErr.Err)
			}
			return c.Status(appErr.HTTPStatus).JSON(appErr)
		}

		// Routing errors (unknown path, wrong method) keep their status.
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"code":    codeForStatus(fiberErr.Code),
				"message": fiberErr.Message,
			})
		}

		reqLog.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": fiber.Map{"request_id": RequestID(c)},
		})
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return apperror.CodeNotFound
	case status >= 400 && status < 500:
		return apperror.CodeInvalidInput
	default:
		return apperror.CodeInternal
	}
}
