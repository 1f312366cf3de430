package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/clothy/internal/logger"
	"github.com/example/clothy/internal/services"
)

// ErrorHandler is the app-wide Fiber error handler. Client errors keep their
// message; everything else becomes a generic 500 with the detail logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var orderErr *services.OrderError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &orderErr):
		code = orderErr.Status
		message = orderErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.L().Error("Request failed",
			zap.Int("status", code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}
