// Package dashboard implements the REST API handler for the home page.
package dashboard

import (
	"context"

	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/gofiber/fiber/v2"
)

// CVSSSource provides the backend's CVSS score breakdown.
type CVSSSource interface {
	CVSSStatistics(ctx context.Context) map[string]any
}

// GetDashboard handles GET /dashboard. It never fails; missing backend data is replaced
// by the sample dashboard and flagged through the warning field.
func GetDashboard(svc *services.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Dashboard(c.UserContext()))
	}
}

// GetCVSSStatistics handles GET /cvss-statistics. Backend failures produce an empty object.
func GetCVSSStatistics(source CVSSSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(source.CVSSStatistics(c.UserContext()))
	}
}
