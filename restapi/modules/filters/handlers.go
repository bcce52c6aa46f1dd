// Package filters implements the REST API handlers for the filter panel catalog.
package filters

import (
	"context"

	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/events/modules/issues"
	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/restapi/respond"
	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Publisher broadcasts a catalog refresh to every replica.
type Publisher interface {
	PublishCatalogRefresh(ctx context.Context) error
}

// GetFilterOptions handles GET /filters.
func GetFilterOptions(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(cat.Options())
	}
}

// GetComponentRows handles GET /filters/components?search=&expanded=&selected=. Expanded
// and selected paths are comma-separated; the caller keeps that state.
func GetComponentRows(cat *catalog.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		exp := filters.NewExpansion(util.SplitCSV(c.Query("expanded"))...)
		sel := filters.NewSetSelection(util.SplitCSV(c.Query("selected"))...)
		return c.JSON(cat.Tree().Rows(exp, sel, c.Query("search")))
	}
}

// RefreshFilters handles POST /filters/refresh. With a publisher the refresh is broadcast
// on the event topic; otherwise the local catalog is reloaded directly.
func RefreshFilters(refresher issues.CatalogRefresher, publisher Publisher, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if publisher != nil {
			if err := publisher.PublishCatalogRefresh(c.UserContext()); err != nil {
				logger.Error("failed to publish catalog refresh", zap.Error(err))
				return respond.Error(c, fiber.StatusBadGateway, "Failed to publish catalog refresh")
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
		}
		if err := refresher.RefreshCatalog(c.UserContext()); err != nil {
			logger.Error("failed to refresh catalog", zap.Error(err))
			return respond.Error(c, fiber.StatusInternalServerError, "Failed to refresh filters")
		}
		return c.JSON(fiber.Map{"status": "refreshed"})
	}
}
