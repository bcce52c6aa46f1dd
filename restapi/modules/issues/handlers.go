// Package issues implements the REST API handlers for issue listings, search and the
// issue and analysis detail pages.
package issues

import (
	"context"
	"strconv"
	"strings"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/restapi/respond"
	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/gofiber/fiber/v2"
)

// Fetcher runs composed issue queries.
type Fetcher interface {
	Fetch(ctx context.Context, q filters.Query) (model.IssuePage, error)
}

// ListIssues handles GET /issues. Filters are comma-separated query parameters; a
// search or vulnerability_type parameter turns the listing into a search.
func ListIssues(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := ParseComposeRequest(c)
		if err != nil {
			return respond.BadRequest(c, err.Error())
		}
		return fetch(c, fetcher, filters.Compose(req))
	}
}

// SearchIssues handles GET /issues/search?query=&type=.
func SearchIssues(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := ParseComposeRequest(c)
		if err != nil {
			return respond.BadRequest(c, err.Error())
		}
		if strings.TrimSpace(req.Search) == "" && len(req.Filters.VulnerabilityTypes) == 0 {
			return respond.BadRequest(c, "query is required")
		}
		return fetch(c, fetcher, filters.Compose(req))
	}
}

func fetch(c *fiber.Ctx, fetcher Fetcher, q filters.Query) error {
	page, err := fetcher.Fetch(c.UserContext(), q)
	if err != nil {
		return respond.FromError(c, err)
	}
	return c.JSON(page)
}

// GetIssue handles GET /issues/:id, returning the issue with its optional analysis.
func GetIssue(svc *services.IssueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := svc.IssueDetail(c.UserContext(), c.Params("id"))
		if err != nil {
			return respond.FromError(c, err)
		}
		return c.JSON(detail)
	}
}

// GetAnalysis handles GET /analysis/:id.
func GetAnalysis(svc *services.IssueService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Analysis(c.UserContext(), c.Params("id"))
		if err != nil {
			return respond.FromError(c, err)
		}
		return c.JSON(view)
	}
}

// ParseComposeRequest reads the listing and search parameters of a request. The search
// term is taken from "query" or "search"; vulnerability types are read from every name
// the backend accepts for them, so links like /issues?vulnerability=X keep their filter.
func ParseComposeRequest(c *fiber.Ctx) (filters.ComposeRequest, error) {
	searchType, err := filters.ParseSearchType(c.Query("type"))
	if err != nil {
		return filters.ComposeRequest{}, err
	}

	state := filters.NewActiveFilterState()
	params := map[filters.Category][]string{
		filters.CategorySeverity:           {"severity"},
		filters.CategoryPriority:           {"priority"},
		filters.CategoryStatus:             {"status"},
		filters.CategoryComponents:         {"component"},
		filters.CategoryOS:                 {"os"},
		filters.CategoryVulnerabilityTypes: filters.VulnerabilityParams(),
	}
	for category, keys := range params {
		if err := state.Set(category, queryValues(c, keys)); err != nil {
			return filters.ComposeRequest{}, err
		}
	}
	state.SetHasCVE(c.QueryBool("has_cve", false))

	page, err := positiveInt(c.Query("page"), filters.DefaultPage)
	if err != nil {
		return filters.ComposeRequest{}, err
	}
	limit, err := positiveInt(c.Query("limit"), filters.DefaultLimit)
	if err != nil {
		return filters.ComposeRequest{}, err
	}

	search := c.Query("query")
	if search == "" {
		search = c.Query("search")
	}

	return filters.ComposeRequest{
		Search:     search,
		SearchType: searchType,
		Filters:    state,
		Page:       page,
		Limit:      limit,
		CveID:      c.Query("cve_id"),
		IssueID:    c.Query("issue_id"),
		Version:    c.Query("version"),
	}, nil
}

// queryValues merges the comma-separated values of keys, first occurrence wins.
func queryValues(c *fiber.Ctx, keys []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, key := range keys {
		for _, v := range util.SplitCSV(c.Query(key)) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid number "+strconv.Quote(raw))
	}
	return n, nil
}
