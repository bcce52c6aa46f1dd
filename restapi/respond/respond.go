// Package respond renders handler failures as {"error": message} bodies.
package respond

import (
	"errors"

	"github.com/ciaa/ciaa-dashboard/apiclient"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/session"
	"github.com/gofiber/fiber/v2"
)

// Error writes a failure with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// BadRequest writes a 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// FromError maps a service error onto a status. Presentable messages are passed through;
// anything else becomes a generic message so raw error chains never reach the browser.
func FromError(c *fiber.Ctx, err error) error {
	var loadErr *services.LoadError
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return Error(c, fiber.StatusNotFound, "Session not found")
	case errors.As(err, &loadErr):
		if errors.Is(err, apiclient.ErrNotFound) || services.IsNoAnalysis(err) {
			return Error(c, fiber.StatusNotFound, loadErr.Message)
		}
		return Error(c, fiber.StatusBadGateway, loadErr.Message)
	case errors.Is(err, apiclient.ErrNotFound):
		return Error(c, fiber.StatusNotFound, "Not found")
	case errors.As(err, &apiErr):
		return Error(c, fiber.StatusBadGateway, apiErr.Message)
	default:
		return Error(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
