package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error().Err(err).Str("path", c.Path()).Msg("request error")
			}
			return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
		},
	})
	h.SetupRoutes(app)
	return app
}
