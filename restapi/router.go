// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/events/modules/issues"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/restapi/modules/dashboard"
	filtersapi "github.com/ciaa/ciaa-dashboard/restapi/modules/filters"
	issuesapi "github.com/ciaa/ciaa-dashboard/restapi/modules/issues"
	"github.com/ciaa/ciaa-dashboard/restapi/modules/sessions"
	"github.com/ciaa/ciaa-dashboard/session"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Deps are the services the REST handlers are bound to.
type Deps struct {
	Fetcher   issuesapi.Fetcher
	IssueSvc  *services.IssueService
	Dashboard *services.DashboardService
	CVSS      dashboard.CVSSSource
	Catalog   *catalog.Catalog
	Refresher issues.CatalogRefresher
	// Publisher is nil when Kafka is disabled.
	Publisher filtersapi.Publisher
	Browser   *session.Browser
	Logger    *zap.Logger
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, deps Deps, schema graphql.Schema) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// API Group /api/v1
	api := app.Group("/api/v1")

	api.Post("/graphql", GraphQLHandler(schema))

	// Issues & Analysis
	api.Get("/issues", issuesapi.ListIssues(deps.Fetcher))
	api.Get("/issues/search", issuesapi.SearchIssues(deps.Fetcher))
	api.Get("/issues/:id", issuesapi.GetIssue(deps.IssueSvc))
	api.Get("/analysis/:id", issuesapi.GetAnalysis(deps.IssueSvc))

	// Filter catalog
	filterGroup := api.Group("/filters")
	filterGroup.Get("/", filtersapi.GetFilterOptions(deps.Catalog))
	filterGroup.Get("/components", filtersapi.GetComponentRows(deps.Catalog))
	filterGroup.Post("/refresh", filtersapi.RefreshFilters(deps.Refresher, deps.Publisher, logger))

	api.Get("/dashboard", dashboard.GetDashboard(deps.Dashboard))
	api.Get("/cvss-statistics", dashboard.GetCVSSStatistics(deps.CVSS))

	// Browser sessions
	sessionGroup := api.Group("/sessions")
	sessionGroup.Post("/", sessions.CreateSession(deps.Browser))
	sessionGroup.Get("/:id", sessions.GetSession(deps.Browser))
	sessionGroup.Delete("/:id", sessions.DeleteSession(deps.Browser))
	sessionGroup.Post("/:id/search", sessions.Search(deps.Browser))
	sessionGroup.Post("/:id/filters/toggle", sessions.ToggleFilter(deps.Browser))
	sessionGroup.Post("/:id/filters/clear", sessions.ClearFilters(deps.Browser))
	sessionGroup.Post("/:id/filters/has-cve", sessions.SetHasCVE(deps.Browser))
	sessionGroup.Post("/:id/page", sessions.SetPage(deps.Browser))
	sessionGroup.Get("/:id/components", sessions.GetComponents(deps.Browser))
	sessionGroup.Post("/:id/components/toggle", sessions.ToggleComponent(deps.Browser))
	sessionGroup.Post("/:id/components/expand", sessions.ToggleExpansion(deps.Browser))
	sessionGroup.Post("/:id/components/search", sessions.SearchComponents(deps.Browser))

	logger.Info("API routes initialized successfully")
}
